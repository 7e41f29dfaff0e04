package netlist

// Resolver canonicalises signal bits within one module under the module's
// explicit-connection relation. It is built once, from a snapshot of the
// module's Conns, and never updated: additions made to the module after
// construction (new wires, new cells) simply fall outside the relation and
// canonicalise to themselves. This is required for correctness of the
// final driver re-routing pass, which must keep asking "what did this bit
// used to be" using the pre-insertion notion of connectivity.
type Resolver struct {
	canon map[SigBit]SigBit
}

// NewResolver builds a Resolver over the current connections of m. Further
// changes to m.Conns are not reflected; build a fresh Resolver if needed.
func NewResolver(m *Module) *Resolver {
	parent := make(map[SigBit]SigBit)

	var find func(SigBit) SigBit
	find = func(b SigBit) SigBit {
		root := b
		for {
			p, ok := parent[root]
			if !ok || p == root {
				return root
			}
			root = p
		}
	}

	union := func(a, b SigBit) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if bitLess(rb, ra) {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	for _, c := range m.Conns {
		n := len(c.LHS)
		if len(c.RHS) < n {
			n = len(c.RHS)
		}
		for i := 0; i < n; i++ {
			union(c.LHS[i], c.RHS[i])
		}
	}

	canon := make(map[SigBit]SigBit, len(parent))
	for b := range parent {
		canon[b] = find(b)
	}
	return &Resolver{canon: canon}
}

// Canon returns the deterministic representative of b's connected-wires
// equivalence class. Bits outside the relation (including any wire created
// after the Resolver was built) canonicalise to themselves.
func (r *Resolver) Canon(b SigBit) SigBit {
	if c, ok := r.canon[b]; ok {
		return c
	}
	return b
}

// CanonSpec canonicalises every bit of sig.
func (r *Resolver) CanonSpec(sig SigSpec) SigSpec {
	out := make(SigSpec, len(sig))
	for i, b := range sig {
		out[i] = r.Canon(b)
	}
	return out
}

// bitLess imposes a total order on signal bits that depends only on wire
// names and bit indices, never on map/slice iteration order or pointer
// values, so that Resolver.Canon is reproducible across runs given the same
// input design.
func bitLess(a, b SigBit) bool {
	if a.IsConst() != b.IsConst() {
		return a.IsConst()
	}
	if a.IsConst() {
		return a.Const < b.Const
	}
	if a.Wire.Name != b.Wire.Name {
		return a.Wire.Name < b.Wire.Name
	}
	return a.Bit < b.Bit
}
