package clkbuf

import "github.com/hdlkit/clkbufmap/netlist"

// portBit identifies one bit of one named port of one cell type: the key
// the attribute catalogue is built over.
type portBit struct {
	CellType string
	Port     string
	Bit      int
}

// invTarget names the partner port bit on the other side of an
// inverter-through cell's declared clkbuf_inv relationship.
type invTarget struct {
	Port string
	Bit  int
}

// Catalogue accumulates, across the whole design, which (cell-type, port,
// bit) triples are clock sinks, clock drivers, or inverter-through pairs.
// It is built once per pass, extended monotonically as modules are
// processed leaves-first, and discarded at pass exit.
type Catalogue struct {
	sinkPorts map[portBit]bool
	bufPorts  map[portBit]bool
	invOut    map[portBit]invTarget
	invIn     map[portBit]invTarget

	// bufferInputs is false when the configured input-pad cell's own
	// output port already carries clkbuf_driver, so a clock buffer must
	// not be stacked on top of it.
	bufferInputs bool
}

func newCatalogue() *Catalogue {
	return &Catalogue{
		sinkPorts:    make(map[portBit]bool),
		bufPorts:     make(map[portBit]bool),
		invOut:       make(map[portBit]invTarget),
		invIn:        make(map[portBit]invTarget),
		bufferInputs: true,
	}
}

// IsSink reports whether (cellType, port, bit) is a known clock sink.
func (c *Catalogue) IsSink(cellType, port string, bit int) bool {
	return c.sinkPorts[portBit{cellType, port, bit}]
}

// IsBuf reports whether (cellType, port, bit) already emits a buffered
// clock.
func (c *Catalogue) IsBuf(cellType, port string, bit int) bool {
	return c.bufPorts[portBit{cellType, port, bit}]
}

func (c *Catalogue) addSink(cellType, port string, bit int) {
	c.sinkPorts[portBit{cellType, port, bit}] = true
}

func (c *Catalogue) addBuf(cellType, port string, bit int) {
	c.bufPorts[portBit{cellType, port, bit}] = true
}

// InvOut returns the partner input-side port bit for an inverter-through
// cell's output port bit, if (cellType, port, bit) declares one.
func (c *Catalogue) InvOut(cellType, port string, bit int) (invTarget, bool) {
	t, ok := c.invOut[portBit{cellType, port, bit}]
	return t, ok
}

// InvIn returns the partner output-side port bit for an inverter-through
// cell's input port bit, if (cellType, port, bit) declares one.
func (c *Catalogue) InvIn(cellType, port string, bit int) (invTarget, bool) {
	t, ok := c.invIn[portBit{cellType, port, bit}]
	return t, ok
}

// BufferInputs reports whether a clock buffer should still be chained
// behind a configured input-pad cell (true unless the pad's own output
// already carries clkbuf_driver).
func (c *Catalogue) BufferInputs() bool { return c.bufferInputs }

// buildCatalogue scans every blackbox module's port wires for the
// clkbuf_* attribute vocabulary and records whether the configured
// input-pad cell already buffers its own output. Regular modules never
// seed the catalogue directly: their ports only enter it later, via
// boundary promotion once their bodies have been processed.
func buildCatalogue(d *netlist.Design, cfg *Config) *Catalogue {
	cat := newCatalogue()
	for _, m := range d.Modules {
		if !m.Blackbox {
			continue
		}
		for _, w := range m.Ports() {
			scanPortWire(cat, m.Name, w)
		}
	}
	if cfg.Inpad.Configured() && cat.IsBuf(cfg.Inpad.CellType, cfg.Inpad.Out, 0) {
		cat.bufferInputs = false
	}
	return cat
}

func scanPortWire(cat *Catalogue, modName string, w *netlist.Wire) {
	if w.BoolAttr(netlist.AttrClkbufDriver) {
		for i := 0; i < w.Width; i++ {
			cat.addBuf(modName, w.Name, i)
		}
	}
	if w.BoolAttr(netlist.AttrClkbufSink) {
		for i := 0; i < w.Width; i++ {
			cat.addSink(modName, w.Name, i)
		}
	}
	if partner, ok := w.StrAttr(netlist.AttrClkbufInv); ok && partner != "" {
		for i := 0; i < w.Width; i++ {
			cat.invOut[portBit{modName, w.Name, i}] = invTarget{partner, i}
			cat.invIn[portBit{modName, partner, i}] = invTarget{w.Name, i}
		}
	}
}
