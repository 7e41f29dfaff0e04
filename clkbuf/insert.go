package clkbuf

import (
	"fmt"

	"github.com/hdlkit/clkbufmap/netlist"
)

// bufferedBit records what now drives a bit that needed buffering: iwire is
// the net the bit's original driver must now drive instead, and the
// original pre-existing drivers of that net get rerouted onto it.
type bufferedBit struct {
	iwire *netlist.Wire
}

// portSwap records an input port wire queued for the port-name swap: old is
// the original port wire (which becomes the post-buffer internal net), new
// is the freshly allocated replacement that takes over the port role.
type portSwap struct {
	old, new *netlist.Wire
}

// moduleState carries every piece of state insertAndRewire and the
// boundary-promotion and rewiring passes need for one module. It is
// created and discarded within the processing of a single module.
type moduleState struct {
	m        *netlist.Module
	cat      *Catalogue
	cfg      *Config
	resolver *netlist.Resolver
	cl       *classification

	bufferedBits  map[netlist.SigBit]bufferedBit
	insertedCells map[*netlist.Cell]bool
	inputQueue    []portSwap
	nextID        int
}

func (st *moduleState) freshName(hint string) string {
	st.nextID++
	return fmt.Sprintf("$clkbuf$%s$%d", hint, st.nextID)
}

// insertAndRewire materialises buffer/pad cells for every classified bit
// that needs one and creates the replacement wires for buffered input
// ports; rerouting the original drivers is left to rerouteDrivers. It
// iterates a snapshot of the
// module's wires taken before any insertion, so newly created wires are never
// reconsidered, and defers input-port rewiring until every wire has been
// processed (several input bits of the same wire may be buffered
// independently).
func insertAndRewire(st *moduleState) error {
	m := st.m
	wires := make([]*netlist.Wire, len(m.Wires))
	copy(wires, m.Wires)

	explicit := st.cfg.Select != nil
	bufferedInputBits := make(map[*netlist.Wire]map[int]bool)

	for _, w := range wires {
		if w.PortInput && w.PortOutput {
			continue
		}

		selected := true
		if explicit {
			selected = st.cfg.Select.Match(w)
		}
		inhibited := w.BoolAttr(netlist.AttrClkbufInhibit)
		if !selected || (inhibited && !explicit) {
			// A skipped output port still gets exported as already-buffered
			// so a parent instantiating this module doesn't try to insert
			// its own buffer on top of a net this pass was told to leave
			// alone.
			if w.PortOutput {
				for i := 0; i < w.Width; i++ {
					st.cat.addBuf(m.Name, w.Name, i)
				}
			}
			continue
		}

		for i := 0; i < w.Width; i++ {
			bit := w.Bit(i)
			canonBit := st.resolver.Canon(bit)

			switch {
			case st.cl.bufWireBits[canonBit]:
				if w.PortOutput {
					st.cat.addBuf(m.Name, w.Name, i)
				}
			case !st.cl.sinkWireBits[canonBit]:
				// no sink consumes this bit; nothing to do.
			default:
				hasLocalDriver := st.cl.drivenWireBits[bit]
				isTopInput := m.Top && w.PortInput
				if !hasLocalDriver && !isTopInput {
					// a submodule input the parent must resolve.
					st.cat.addSink(m.Name, w.Name, i)
					continue
				}
				if err := st.materialiseBuffer(w, i, canonBit); err != nil {
					return err
				}
				if _, ok := st.bufferedBits[canonBit]; ok && w.PortInput {
					if bufferedInputBits[w] == nil {
						bufferedInputBits[w] = make(map[int]bool)
					}
					bufferedInputBits[w][i] = true
				}
			}
		}
	}

	return st.rewriteInputPorts(wires, bufferedInputBits)
}

// materialiseBuffer allocates the buffer and/or input-pad cells for
// canonBit, once a local driver (or top-level input role) for it has been
// confirmed, and records the resulting bufferedBit.
func (st *moduleState) materialiseBuffer(w *netlist.Wire, i int, canonBit netlist.SigBit) error {
	isInput := w.PortInput && st.cfg.Inpad.Configured() && st.m.Top
	needBuffer := st.cfg.Buf.Configured() && (!isInput || st.cat.BufferInputs()) && !w.PortOutput

	var driverSide *netlist.Wire
	created := false

	if needBuffer {
		iwire, err := st.m.AddWire(st.freshName(w.Name), 1)
		if err != nil {
			return err
		}
		bufType := st.cfg.Buf.CellType
		generated := st.cl.generatedClkBits[canonBit]
		if generated {
			bufType = st.cfg.CellTypes.FClkBuf
		}
		cell := st.m.AddCell(st.freshName(bufType), bufType)
		cell.SetPort(st.cfg.Buf.Out, netlist.SigSpec{canonBit})
		cell.SetPort(st.cfg.Buf.In, netlist.SigSpec{iwire.Bit(0)})
		if generated {
			st.cfg.Log.WithFields(logFields(st.m.Name, cell.Name, canonBit.String())).
				Warn("clkbuf: generated clock detected, using FCLK_BUF")
		}
		st.cfg.Log.WithFields(logFields(st.m.Name, cell.Name, canonBit.String())).
			Debug("clkbuf: inserted clock buffer")
		st.insertedCells[cell] = true
		driverSide, created = iwire, true
	}

	if isInput {
		// The pad's network-facing port (Out, same convention as the
		// buffer's) drives whatever the next stage downstream consumes:
		// the buffer's driver-side net if one was just created, or m
		// directly if not. Its driver-facing port (In) reads a fresh net
		// that becomes the new top-level input pin.
		netSide := canonBit
		if driverSide != nil {
			netSide = driverSide.Bit(0)
		}
		extWire, err := st.m.AddWire(st.freshName(w.Name), 1)
		if err != nil {
			return err
		}
		pad := st.m.AddCell(st.freshName(st.cfg.Inpad.CellType), st.cfg.Inpad.CellType)
		pad.SetPort(st.cfg.Inpad.Out, netlist.SigSpec{netSide})
		pad.SetPort(st.cfg.Inpad.In, netlist.SigSpec{extWire.Bit(0)})
		st.cfg.Log.WithFields(logFields(st.m.Name, pad.Name, canonBit.String())).
			Debug("clkbuf: inserted input pad")
		st.insertedCells[pad] = true
		driverSide, created = extWire, true
	}

	if !created {
		// Neither -buf nor -inpad applies to this bit (e.g. an output-port
		// wire, which never gets a buffer, with no pad for it): silent skip.
		return nil
	}

	st.bufferedBits[canonBit] = bufferedBit{iwire: driverSide}
	return nil
}

// rewriteInputPorts closes out insertion: every input wire with at least
// one buffered bit gets a fresh replacement wire, queued for the
// port-name swap.
func (st *moduleState) rewriteInputPorts(wires []*netlist.Wire, bufferedInputBits map[*netlist.Wire]map[int]bool) error {
	for _, w := range wires {
		bits, ok := bufferedInputBits[w]
		if !ok {
			continue
		}
		newWire, err := st.m.AddWireLike(st.freshName(w.Name), w)
		if err != nil {
			return err
		}
		for i := 0; i < w.Width; i++ {
			var src netlist.SigBit
			if bits[i] {
				src = st.bufferedBits[st.resolver.Canon(w.Bit(i))].iwire.Bit(0)
			} else {
				src = w.Bit(i)
			}
			if err := st.m.Connect(netlist.SigSpec{src}, netlist.SigSpec{newWire.Bit(i)}); err != nil {
				return err
			}
		}
		st.inputQueue = append(st.inputQueue, portSwap{old: w, new: newWire})
	}
	return nil
}

// promoteBoundary runs after insertion: every output port bit whose
// canonical bit ended up buffered is exported to the catalogue so parent
// modules know not to insert another buffer.
func promoteBoundary(st *moduleState) {
	for _, w := range st.m.Ports() {
		if !w.PortOutput {
			continue
		}
		for i := 0; i < w.Width; i++ {
			if _, ok := st.bufferedBits[st.resolver.Canon(w.Bit(i))]; ok {
				st.cat.addBuf(st.m.Name, w.Name, i)
			}
		}
	}
}

func logFields(module, cell, bit string) map[string]interface{} {
	return map[string]interface{}{"module": module, "cell": cell, "bit": bit}
}
