package clkbuf

import "github.com/hdlkit/clkbufmap/netlist"

// orderModules returns the design's regular (non-blackbox) modules in
// leaves-first order over the cell-instantiation graph: a module is
// emitted only after every module referenced by any of its cells. Cycles
// (rare, typically illegal netlists) are broken by visiting each module at
// most once rather than by detecting and reporting them.
func orderModules(d *netlist.Design) []*netlist.Module {
	visited := make(map[string]bool, len(d.Modules))
	visiting := make(map[string]bool, len(d.Modules))
	order := make([]*netlist.Module, 0, len(d.Modules))

	var visit func(m *netlist.Module)
	visit = func(m *netlist.Module) {
		if visited[m.Name] || visiting[m.Name] {
			return
		}
		visiting[m.Name] = true
		for _, c := range m.Cells {
			if sub, ok := d.Module(c.Type); ok && !sub.Blackbox {
				visit(sub)
			}
		}
		visiting[m.Name] = false
		visited[m.Name] = true
		order = append(order, m)
	}

	for _, m := range d.Modules {
		if !m.Blackbox {
			visit(m)
		}
	}
	return order
}
