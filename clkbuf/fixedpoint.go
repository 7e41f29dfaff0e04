package clkbuf

import "github.com/hdlkit/clkbufmap/netlist"

// invOcc is one occurrence of a catalogued inverter-through port bit on a
// concrete cell instance, together with the partner port bit it maps to.
type invOcc struct {
	cell   *netlist.Cell
	target invTarget
}

// propagateInverters runs a worklist over canonical bits, keyed on newly
// added bits, rather than repeated full sweeps. Both sinkWireBits and
// bufWireBits grow monotonically, bounded by the number of bits in the
// module, so the worklist terminates at the least fixed point regardless
// of processing order.
func propagateInverters(m *netlist.Module, cat *Catalogue, r *netlist.Resolver, cl *classification) {
	outOcc := make(map[netlist.SigBit][]invOcc)
	inOcc := make(map[netlist.SigBit][]invOcc)

	for _, c := range m.Cells {
		c.Ports(func(port string, sig netlist.SigSpec) {
			for i, b := range sig {
				if b.IsConst() {
					continue
				}
				cb := r.Canon(b)
				if t, ok := cat.InvOut(c.Type, port, i); ok {
					outOcc[cb] = append(outOcc[cb], invOcc{c, t})
				}
				if t, ok := cat.InvIn(c.Type, port, i); ok {
					inOcc[cb] = append(inOcc[cb], invOcc{c, t})
				}
			}
		})
	}

	partnerBit := func(occ invOcc) (netlist.SigBit, bool) {
		sig, ok := occ.cell.Port(occ.target.Port)
		if !ok || occ.target.Bit >= len(sig) {
			return netlist.SigBit{}, false
		}
		return r.Canon(sig[occ.target.Bit]), true
	}

	queued := make(map[netlist.SigBit]bool)
	var worklist []netlist.SigBit
	enqueue := func(b netlist.SigBit) {
		if !queued[b] {
			queued[b] = true
			worklist = append(worklist, b)
		}
	}
	for b := range cl.sinkWireBits {
		enqueue(b)
	}
	for b := range cl.bufWireBits {
		enqueue(b)
	}

	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]
		queued[b] = false

		if cl.sinkWireBits[b] && !cl.bufWireBits[b] && len(outOcc[b]) > 0 {
			cl.bufWireBits[b] = true
			enqueue(b)
			for _, occ := range outOcc[b] {
				pb, ok := partnerBit(occ)
				if ok && !cl.sinkWireBits[pb] {
					cl.sinkWireBits[pb] = true
					enqueue(pb)
				}
			}
		}
		if cl.bufWireBits[b] {
			for _, occ := range inOcc[b] {
				pb, ok := partnerBit(occ)
				if ok && !cl.bufWireBits[pb] {
					cl.bufWireBits[pb] = true
					enqueue(pb)
				}
			}
		}
	}
}
