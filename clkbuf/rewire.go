package clkbuf

import "github.com/hdlkit/clkbufmap/netlist"

// rerouteDrivers rewrites every cell's output-port connection that used
// to drive a now-buffered bit to drive the buffer's input net instead, so
// the original net ends up driven solely by the buffer. The buffer cell
// itself is excluded to avoid wiring it into a self-loop.
func rerouteDrivers(st *moduleState) {
	for _, c := range st.m.Cells {
		if st.insertedCells[c] {
			// the buffer/pad chain we just created; its own output
			// connections are already correct and must not be rerouted
			// into a self-loop.
			continue
		}
		var rewritten map[string]netlist.SigSpec
		c.Ports(func(port string, sig netlist.SigSpec) {
			_, isOutput, known := st.m.Design.CellPortDirection(c.Type, port)
			if !known || !isOutput {
				return
			}
			changed := false
			out := make(netlist.SigSpec, len(sig))
			for i, b := range sig {
				out[i] = b
				if b.IsConst() {
					continue
				}
				bb, ok := st.bufferedBits[st.resolver.Canon(b)]
				if !ok {
					continue
				}
				out[i] = bb.iwire.Bit(0)
				changed = true
			}
			if changed {
				if rewritten == nil {
					rewritten = make(map[string]netlist.SigSpec)
				}
				rewritten[port] = out
			}
		})
		for port, sig := range rewritten {
			c.SetPort(port, sig)
		}
	}
}

// swapPortNames lets each queued replacement wire take over the original
// port's name and role, while the original wire object keeps answering to
// its (now internal) identity.
func swapPortNames(st *moduleState) {
	if len(st.inputQueue) == 0 {
		return
	}
	for _, ps := range st.inputQueue {
		st.m.SwapNames(ps.old, ps.new)
		ps.old.ClearIdentity()
	}
	st.m.FixupPorts()
}

// reconnectCombinational handles cells that are neither clock sinks nor
// buffers, but whose input ports still reference a top-level input wire
// that has since been renamed out from under them: they are rewired to
// see the original (pre-buffer) signal rather than the now-internal,
// buffered net.
func reconnectCombinational(st *moduleState) {
	if len(st.inputQueue) == 0 {
		return
	}
	mapping := make(map[*netlist.Wire]*netlist.Wire, len(st.inputQueue))
	for _, ps := range st.inputQueue {
		mapping[ps.old] = ps.new
	}

	bufTypes := map[string]bool{st.cfg.CellTypes.FClkBuf: true}
	if st.cfg.Buf.Configured() {
		bufTypes[st.cfg.Buf.CellType] = true
	}
	if st.cfg.Inpad.Configured() {
		bufTypes[st.cfg.Inpad.CellType] = true
	}

	for _, c := range st.m.Cells {
		// Inverter-through cells (cellsOnClockPath) are excluded alongside
		// literal sink cells: a cell that passes a clock through inversion
		// is part of the buffered path by construction (inverter
		// propagation already pulled the buffer upstream of it), never
		// the kind of incidental combinational consumer this reconnection
		// is meant to restore.
		if st.cl.cellsWithSinkPorts[c.Type] || st.cl.cellsOnClockPath[c.Type] || bufTypes[c.Type] {
			continue
		}
		var rewritten map[string]netlist.SigSpec
		c.Ports(func(port string, sig netlist.SigSpec) {
			isInput, _, known := st.m.Design.CellPortDirection(c.Type, port)
			if !known || !isInput {
				return
			}
			changed := false
			out := make(netlist.SigSpec, len(sig))
			for i, b := range sig {
				out[i] = b
				if b.IsConst() {
					continue
				}
				if nw, ok := mapping[b.Wire]; ok {
					out[i] = nw.Bit(b.Bit)
					changed = true
				}
			}
			if changed {
				if rewritten == nil {
					rewritten = make(map[string]netlist.SigSpec)
				}
				rewritten[port] = out
			}
		})
		for port, sig := range rewritten {
			c.SetPort(port, sig)
		}
	}
}
