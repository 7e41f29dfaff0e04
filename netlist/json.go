package netlist

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// This file implements a JSON codec for Design, covering the subset of the
// Yosys `write_json` netlist schema (see the reference dump in
// original_source/backends/json/analyze.cc) that clkbufmap needs to run
// standalone: modules, their ports and attributes, netnames (wire bit
// numbering), cells and their port connections, and explicit connect
// statements. It deliberately does not attempt full interop with arbitrary
// Yosys JSON dumps (parameters, memories, processes are out of scope).

type jsonDesign struct {
	Modules map[string]*jsonModule `json:"modules"`
}

type jsonModule struct {
	Attributes map[string]string    `json:"attributes,omitempty"`
	Top        bool                 `json:"top,omitempty"`
	Blackbox   bool                 `json:"blackbox,omitempty"`
	PortOrder  []string             `json:"port_order,omitempty"`
	Ports      map[string]*jsonPort `json:"ports,omitempty"`
	Cells      map[string]*jsonCell `json:"cells,omitempty"`
	Netnames   map[string]*jsonNet  `json:"netnames,omitempty"`
	Connects   [][2][]interface{}   `json:"connects,omitempty"`
}

type jsonPort struct {
	Direction string        `json:"direction"`
	Bits      []interface{} `json:"bits"`
}

type jsonCell struct {
	Type        string                   `json:"type"`
	Attributes  map[string]string        `json:"attributes,omitempty"`
	PortOrder   []string                 `json:"port_order,omitempty"`
	Connections map[string][]interface{} `json:"connections,omitempty"`
}

type jsonNet struct {
	Bits       []interface{}     `json:"bits"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Encode writes d to w as JSON.
func Encode(w io.Writer, d *Design) error {
	jd := jsonDesign{Modules: make(map[string]*jsonModule, len(d.Modules))}
	for _, m := range d.Modules {
		jd.Modules[m.Name] = encodeModule(m)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(jd), "encode design")
}

func encodeModule(m *Module) *jsonModule {
	jm := &jsonModule{
		Attributes: m.Attrs,
		Top:        m.Top,
		Blackbox:   m.Blackbox,
		Netnames:   make(map[string]*jsonNet, len(m.Wires)),
	}

	ids := make(map[SigBit]int)
	next := 2 // 0 and 1 are reserved the way Yosys reserves them for constants in compat dumps; harmless here.
	for _, w := range m.Wires {
		bits := make([]interface{}, w.Width)
		for i := 0; i < w.Width; i++ {
			b := w.Bit(i)
			ids[b] = next
			bits[i] = next
			next++
		}
		jm.Netnames[w.Name] = &jsonNet{Bits: bits, Attributes: w.Attrs}
	}

	if ports := m.Ports(); len(ports) > 0 {
		jm.Ports = make(map[string]*jsonPort, len(ports))
		jm.PortOrder = make([]string, len(ports))
		for i, w := range ports {
			jm.PortOrder[i] = w.Name
			jm.Ports[w.Name] = &jsonPort{
				Direction: portDirection(w),
				Bits:      rawBits(w.Bits(), ids),
			}
		}
	}

	if len(m.Cells) > 0 {
		jm.Cells = make(map[string]*jsonCell, len(m.Cells))
		for _, c := range m.Cells {
			jc := &jsonCell{Type: c.Type, Attributes: c.Attrs, Connections: make(map[string][]interface{})}
			c.Ports(func(port string, sig SigSpec) {
				jc.PortOrder = append(jc.PortOrder, port)
				jc.Connections[port] = rawBits(sig, ids)
			})
			jm.Cells[c.Name] = jc
		}
	}

	for _, conn := range m.Conns {
		jm.Connects = append(jm.Connects, [2][]interface{}{
			rawBits(conn.LHS, ids),
			rawBits(conn.RHS, ids),
		})
	}

	return jm
}

func portDirection(w *Wire) string {
	switch {
	case w.PortInput && w.PortOutput:
		return "inout"
	case w.PortOutput:
		return "output"
	default:
		return "input"
	}
}

func rawBits(sig SigSpec, ids map[SigBit]int) []interface{} {
	out := make([]interface{}, len(sig))
	for i, b := range sig {
		if b.IsConst() {
			out[i] = string(rune(b.Const))
			continue
		}
		out[i] = ids[b]
	}
	return out
}

// Decode reads a Design back from JSON written by Encode (or a compatible
// subset of Yosys's own JSON dump).
func Decode(r io.Reader) (*Design, error) {
	var jd jsonDesign
	if err := json.NewDecoder(r).Decode(&jd); err != nil {
		return nil, errors.Wrap(err, "decode design")
	}
	d := NewDesign()

	// Modules must be created before any cell references another module by
	// name, and in a deterministic order so error messages are stable.
	names := make([]string, 0, len(jd.Modules))
	for name := range jd.Modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		jm := jd.Modules[name]
		m := d.NewModule(name, jm.Blackbox)
		m.Top = jm.Top
		m.Attrs = jm.Attributes

		bitToSig := make(map[int]SigBit)
		netNames := make([]string, 0, len(jm.Netnames))
		for wn := range jm.Netnames {
			netNames = append(netNames, wn)
		}
		sort.Strings(netNames)
		for _, wn := range netNames {
			jn := jm.Netnames[wn]
			w, err := m.AddWire(wn, len(jn.Bits))
			if err != nil {
				return nil, err
			}
			w.Attrs = jn.Attributes
			for i, raw := range jn.Bits {
				id, ok := raw.(float64)
				if !ok {
					continue // constant bit in a netname; not addressable by id
				}
				bitToSig[int(id)] = w.Bit(i)
			}
		}

		for _, pn := range jm.PortOrder {
			jp := jm.Ports[pn]
			if jp == nil {
				continue
			}
			w, ok := m.Wire(pn)
			if !ok {
				var err error
				w, err = m.AddWire(pn, len(jp.Bits))
				if err != nil {
					return nil, err
				}
			}
			switch jp.Direction {
			case "input":
				w.PortInput = true
			case "output":
				w.PortOutput = true
			case "inout":
				w.PortInput, w.PortOutput = true, true
			default:
				return nil, errors.Errorf("%s.%s: unknown port direction %q", name, pn, jp.Direction)
			}
			m.ports = append(m.ports, w)
			w.PortIndex = len(m.ports)
		}

		cellNames := make([]string, 0, len(jm.Cells))
		for cn := range jm.Cells {
			cellNames = append(cellNames, cn)
		}
		sort.Strings(cellNames)
		for _, cn := range cellNames {
			jc := jm.Cells[cn]
			c := m.AddCell(cn, jc.Type)
			c.Attrs = jc.Attributes
			order := jc.PortOrder
			if len(order) == 0 {
				for p := range jc.Connections {
					order = append(order, p)
				}
				sort.Strings(order)
			}
			for _, p := range order {
				sig, err := decodeBits(jc.Connections[p], bitToSig)
				if err != nil {
					return nil, errors.Wrapf(err, "%s.%s port %s", name, cn, p)
				}
				c.SetPort(p, sig)
			}
		}

		for _, pair := range jm.Connects {
			lhs, err := decodeBits(pair[0], bitToSig)
			if err != nil {
				return nil, err
			}
			rhs, err := decodeBits(pair[1], bitToSig)
			if err != nil {
				return nil, err
			}
			if err := m.Connect(lhs, rhs); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

func decodeBits(raw []interface{}, bitToSig map[int]SigBit) (SigSpec, error) {
	sig := make(SigSpec, len(raw))
	for i, v := range raw {
		switch t := v.(type) {
		case float64:
			b, ok := bitToSig[int(t)]
			if !ok {
				return nil, errors.Errorf("unknown bit id %d", int(t))
			}
			sig[i] = b
		case string:
			switch t {
			case "0":
				sig[i] = ConstBit(Const0)
			case "1":
				sig[i] = ConstBit(Const1)
			case "x", "z":
				sig[i] = ConstBit(ConstX)
			default:
				return nil, errors.Errorf("unknown constant bit %q", t)
			}
		default:
			return nil, errors.Errorf("unexpected bit value %v", v)
		}
	}
	return sig, nil
}
