package clkbuf

import "github.com/hdlkit/clkbufmap/netlist"

// classification holds the per-module classifier state, valid only for
// the duration of processing one module. sinkWireBits and bufWireBits are
// indexed by canonical bit; drivenWireBits and iBufOut are indexed by the
// raw, non-canonical bit. This keeps the raw indexing deliberately rather
// than silently canonicalising both sides; see DESIGN.md.
type classification struct {
	sinkWireBits       map[netlist.SigBit]bool
	bufWireBits        map[netlist.SigBit]bool
	drivenWireBits     map[netlist.SigBit]bool
	iBufOut            map[netlist.SigBit]bool
	generatedClkBits   map[netlist.SigBit]bool // canonical
	cellsWithSinkPorts map[string]bool
	cellsOnClockPath   map[string]bool
}

// classify walks every cell and port connection of m, classifying each
// bit.
func classify(m *netlist.Module, cat *Catalogue, ct CellTypes, r *netlist.Resolver) *classification {
	cl := &classification{
		sinkWireBits:       make(map[netlist.SigBit]bool),
		bufWireBits:        make(map[netlist.SigBit]bool),
		drivenWireBits:     make(map[netlist.SigBit]bool),
		iBufOut:            make(map[netlist.SigBit]bool),
		generatedClkBits:   make(map[netlist.SigBit]bool),
		cellsWithSinkPorts: make(map[string]bool),
		cellsOnClockPath:   make(map[string]bool),
	}

	for _, c := range m.Cells {
		c.Ports(func(port string, sig netlist.SigSpec) {
			_, isOutput, known := m.Design.CellPortDirection(c.Type, port)
			isOutput = known && isOutput
			for i, b := range sig {
				if b.IsConst() {
					continue
				}
				if cat.IsSink(c.Type, port, i) {
					cl.sinkWireBits[r.Canon(b)] = true
					cl.cellsWithSinkPorts[c.Type] = true
				}
				if cat.IsBuf(c.Type, port, i) {
					cl.bufWireBits[r.Canon(b)] = true
				}
				if _, ok := cat.InvOut(c.Type, port, i); ok {
					cl.cellsOnClockPath[c.Type] = true
				}
				if _, ok := cat.InvIn(c.Type, port, i); ok {
					cl.cellsOnClockPath[c.Type] = true
				}
				if isOutput {
					if c.Type != ct.PLL && c.Type != ct.BootClock {
						cl.drivenWireBits[b] = true
					}
					if c.Type == ct.IBuf {
						cl.iBufOut[b] = true
					}
				}
			}
		})
	}

	for _, c := range m.Cells {
		if c.Type != ct.DFFRE {
			continue
		}
		sig, ok := c.Port("C")
		if !ok {
			continue
		}
		for _, b := range sig {
			if b.IsConst() {
				continue
			}
			if cl.drivenWireBits[b] && !cl.iBufOut[b] {
				cl.generatedClkBits[r.Canon(b)] = true
			}
		}
	}

	return cl
}
