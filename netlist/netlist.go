package netlist

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConstVal is the value carried by a constant signal bit.
type ConstVal byte

// Constant bit values. There is no separate "z" (high impedance) handling;
// this pass never needs to reason about it.
const (
	Const0 ConstVal = '0'
	Const1 ConstVal = '1'
	ConstX ConstVal = 'x'
)

// SigBit is a single-bit signal reference: either bit Bit of wire Wire, or a
// constant when Wire is nil.
type SigBit struct {
	Wire  *Wire
	Bit   int
	Const ConstVal
}

// IsConst reports whether b is a constant rather than a wire bit.
func (b SigBit) IsConst() bool { return b.Wire == nil }

func (b SigBit) String() string {
	if b.IsConst() {
		return string(rune(b.Const))
	}
	return fmt.Sprintf("%s[%d]", b.Wire.Name, b.Bit)
}

// ConstBit returns the signal bit for a constant value.
func ConstBit(v ConstVal) SigBit { return SigBit{Const: v} }

// SigSpec is an ordered list of signal bits, e.g. the value connected to a
// cell port or one side of a Conn.
type SigSpec []SigBit

// Wire represents one named, possibly multi-bit wire in a module.
type Wire struct {
	Module     *Module
	Name       string
	Width      int
	PortInput  bool
	PortOutput bool
	PortIndex  int // 1-based position in the module's port list; 0 if not a port
	Attrs      map[string]string
}

// Bit returns signal bit i of w.
func (w *Wire) Bit(i int) SigBit { return SigBit{Wire: w, Bit: i} }

// Bits returns all of w's bits, in order.
func (w *Wire) Bits() SigSpec {
	s := make(SigSpec, w.Width)
	for i := range s {
		s[i] = w.Bit(i)
	}
	return s
}

// IsPort reports whether w is a port (input, output, or both).
func (w *Wire) IsPort() bool { return w.PortInput || w.PortOutput }

// BoolAttr reports whether w carries a truthy boolean attribute.
func (w *Wire) BoolAttr(name string) bool { return boolAttr(w.Attrs, name) }

// SetBoolAttr sets or clears a boolean attribute on w.
func (w *Wire) SetBoolAttr(name string, v bool) {
	w.Attrs = setBoolAttr(w.Attrs, name, v)
}

// StrAttr returns a string-valued attribute and whether it is present.
func (w *Wire) StrAttr(name string) (string, bool) {
	v, ok := w.Attrs[name]
	return v, ok
}

// SetStrAttr sets a string-valued attribute on w.
func (w *Wire) SetStrAttr(name, v string) {
	if w.Attrs == nil {
		w.Attrs = make(map[string]string)
	}
	w.Attrs[name] = v
}

// ClearIdentity strips a wire of its attributes and port role, as happens to
// the original wire object during clock-buffer port-name swapping: its name
// stays around as the new internal net, but it is no longer a port and
// carries none of the port's attributes.
func (w *Wire) ClearIdentity() {
	w.Attrs = nil
	w.PortInput = false
	w.PortOutput = false
	w.PortIndex = 0
}

// Cell is an instance of a named cell type inside a module, connected to
// signals on each of its ports.
type Cell struct {
	Module    *Module
	Name      string
	Type      string
	Attrs     map[string]string
	conns     map[string]SigSpec
	portOrder []string // connection order, for deterministic iteration
}

// SetPort connects sig to cell port p, replacing any previous connection.
func (c *Cell) SetPort(p string, sig SigSpec) {
	if c.conns == nil {
		c.conns = make(map[string]SigSpec)
	}
	if _, ok := c.conns[p]; !ok {
		c.portOrder = append(c.portOrder, p)
	}
	c.conns[p] = sig
}

// Port returns the signal connected to cell port p.
func (c *Cell) Port(p string) (SigSpec, bool) {
	sig, ok := c.conns[p]
	return sig, ok
}

// Ports calls f for every port connection on c, in connection order.
func (c *Cell) Ports(f func(port string, sig SigSpec)) {
	for _, p := range c.portOrder {
		f(p, c.conns[p])
	}
}

// BoolAttr reports whether c carries a truthy boolean attribute.
func (c *Cell) BoolAttr(name string) bool { return boolAttr(c.Attrs, name) }

// Conn is an explicit bit-level alias between two equal-width signals,
// e.g. as produced by a `connect` statement. It is the sole source of
// signal equivalence the resolver in signal.go works from: cell port
// connections reference wire bits directly and need no aliasing.
type Conn struct {
	LHS, RHS SigSpec
}

// Module is a named container of wires, cells and connections. A module may
// be a blackbox (interface only, via its ports) or regular (has a body of
// cells and connections).
type Module struct {
	Design   *Design
	Name     string
	Blackbox bool
	Top      bool
	Attrs    map[string]string

	Wires []*Wire
	Cells []*Cell
	Conns []Conn

	wireByName map[string]*Wire
	ports      []*Wire
}

// NewModule creates an empty module and registers it with d.
func (d *Design) NewModule(name string, blackbox bool) *Module {
	m := &Module{
		Design:     d,
		Name:       name,
		Blackbox:   blackbox,
		wireByName: make(map[string]*Wire),
	}
	d.Modules = append(d.Modules, m)
	d.byName[name] = m
	return m
}

// BoolAttr reports whether m carries a truthy boolean attribute.
func (m *Module) BoolAttr(name string) bool { return boolAttr(m.Attrs, name) }

// SetBoolAttr sets or clears a boolean attribute on m.
func (m *Module) SetBoolAttr(name string, v bool) {
	m.Attrs = setBoolAttr(m.Attrs, name, v)
}

// Wire looks up a wire by name.
func (m *Module) Wire(name string) (*Wire, bool) {
	w, ok := m.wireByName[name]
	return w, ok
}

// AddWire creates a new, non-port wire of the given width.
func (m *Module) AddWire(name string, width int) (*Wire, error) {
	if _, exists := m.wireByName[name]; exists {
		return nil, errors.Errorf("%s: wire %q already exists", m.Name, name)
	}
	w := &Wire{Module: m, Name: name, Width: width}
	m.Wires = append(m.Wires, w)
	m.wireByName[name] = w
	return w, nil
}

// AddWireLike creates a new wire with the given name that copies width,
// attributes and port role from like. It does not register the new wire as
// a port; call FixupPorts afterwards for that to take effect. This mirrors
// adding a replacement wire for an input port that is about to be rewired.
func (m *Module) AddWireLike(name string, like *Wire) (*Wire, error) {
	w, err := m.AddWire(name, like.Width)
	if err != nil {
		return nil, err
	}
	w.PortInput = like.PortInput
	w.PortOutput = like.PortOutput
	w.PortIndex = like.PortIndex
	if like.Attrs != nil {
		w.Attrs = make(map[string]string, len(like.Attrs))
		for k, v := range like.Attrs {
			w.Attrs[k] = v
		}
	}
	return w, nil
}

// AddPort creates a new port wire and appends it to the module's port list.
func (m *Module) AddPort(name string, width int, input, output bool) (*Wire, error) {
	w, err := m.AddWire(name, width)
	if err != nil {
		return nil, err
	}
	w.PortInput = input
	w.PortOutput = output
	m.ports = append(m.ports, w)
	w.PortIndex = len(m.ports)
	return w, nil
}

// Ports returns the module's ports in declaration order.
func (m *Module) Ports() []*Wire {
	return m.ports
}

// SwapNames exchanges the Name fields of a and b (and the module's
// name index), so that whichever wire object used to answer to one name now
// answers to the other.
func (m *Module) SwapNames(a, b *Wire) {
	m.wireByName[a.Name] = b
	m.wireByName[b.Name] = a
	a.Name, b.Name = b.Name, a.Name
}

// FixupPorts rebuilds the module's port list from the current PortInput /
// PortOutput flags of its wires, preserving relative PortIndex order and
// renumbering contiguously from 1. Call after any operation that changes
// which wires are ports (e.g. a port-name swap).
func (m *Module) FixupPorts() {
	ports := make([]*Wire, 0, len(m.ports))
	for _, w := range m.Wires {
		if w.IsPort() {
			ports = append(ports, w)
		}
	}
	// stable sort by previous PortIndex (0 sorts last, i.e. newly-promoted
	// wires are appended at the end, matching Yosys's fixup_ports order).
	for i := 1; i < len(ports); i++ {
		for j := i; j > 0; j-- {
			pi, pj := ports[j-1].PortIndex, ports[j].PortIndex
			if pi == 0 {
				pi = 1 << 30
			}
			if pj == 0 {
				pj = 1 << 30
			}
			if pi <= pj {
				break
			}
			ports[j-1], ports[j] = ports[j], ports[j-1]
		}
	}
	for i, w := range ports {
		w.PortIndex = i + 1
	}
	m.ports = ports
}

// AddCell creates a new, unconnected cell instance of the given type.
func (m *Module) AddCell(name, typ string) *Cell {
	c := &Cell{Module: m, Name: name, Type: typ}
	m.Cells = append(m.Cells, c)
	return c
}

// Connect records an explicit bit-level alias between two equal-width
// signals. It is the only way two distinct wire bits become equivalent for
// the purposes of the resolver in signal.go.
func (m *Module) Connect(lhs, rhs SigSpec) error {
	if len(lhs) != len(rhs) {
		return errors.Errorf("%s: connect width mismatch: %d vs %d", m.Name, len(lhs), len(rhs))
	}
	m.Conns = append(m.Conns, Conn{LHS: lhs, RHS: rhs})
	return nil
}

// Design is a collection of named modules.
type Design struct {
	Modules []*Module
	byName  map[string]*Module
}

// NewDesign returns an empty design.
func NewDesign() *Design {
	return &Design{byName: make(map[string]*Module)}
}

// Module looks up a module by name.
func (d *Design) Module(name string) (*Module, bool) {
	m, ok := d.byName[name]
	return m, ok
}

// CellPortDirection reports the input/output role of a cell's port, as
// declared by the module (regular or blackbox) that defines cellType. ok is
// false if cellType or the port is unknown to the design.
func (d *Design) CellPortDirection(cellType, port string) (input, output, ok bool) {
	mod, found := d.Module(cellType)
	if !found {
		return false, false, false
	}
	w, found := mod.Wire(port)
	if !found {
		return false, false, false
	}
	return w.PortInput, w.PortOutput, true
}

func boolAttr(attrs map[string]string, name string) bool {
	v, ok := attrs[name]
	return ok && v != "" && v != "0"
}

func setBoolAttr(attrs map[string]string, name string, v bool) map[string]string {
	if !v {
		delete(attrs, name)
		return attrs
	}
	if attrs == nil {
		attrs = make(map[string]string)
	}
	attrs[name] = "1"
	return attrs
}
