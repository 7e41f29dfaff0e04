// Package clkbuftest provides fixture builders and netlist-inspection
// helpers for clkbuf's tests: small, composable constructors for the
// netlists exercised by each testable property of the pass, rather than
// one hand-rolled design per test.
package clkbuftest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdlkit/clkbufmap/netlist"
)

// PortSpec describes one port of a blackbox module fixture.
type PortSpec struct {
	Name          string
	Width         int
	Input, Output bool
	Driver        bool   // sets clkbuf_driver on every bit
	Sink          bool   // sets clkbuf_sink on every bit
	Inv           string // sets clkbuf_inv=Inv on every bit
}

// Blackbox adds a blackbox module named name with the given ports to d.
func Blackbox(t *testing.T, d *netlist.Design, name string, ports ...PortSpec) *netlist.Module {
	t.Helper()
	m := d.NewModule(name, true)
	for _, p := range ports {
		w, err := m.AddPort(p.Name, p.Width, p.Input, p.Output)
		require.NoError(t, err)
		if p.Driver {
			w.SetBoolAttr(netlist.AttrClkbufDriver, true)
		}
		if p.Sink {
			w.SetBoolAttr(netlist.AttrClkbufSink, true)
		}
		if p.Inv != "" {
			w.SetStrAttr(netlist.AttrClkbufInv, p.Inv)
		}
	}
	return m
}

// Top adds a regular top-level module named name to d.
func Top(t *testing.T, d *netlist.Design, name string) *netlist.Module {
	t.Helper()
	m := d.NewModule(name, false)
	m.Top = true
	return m
}

// Regular adds a regular, non-top module named name to d.
func Regular(t *testing.T, d *netlist.Design, name string) *netlist.Module {
	t.Helper()
	return d.NewModule(name, false)
}

// Inst instantiates a cell of type typ in m, wiring port -> sig for each
// entry of conns (sig is a single-bit SigSpec built from a wire).
func Inst(t *testing.T, m *netlist.Module, name, typ string, conns map[string]netlist.SigSpec) *netlist.Cell {
	t.Helper()
	c := m.AddCell(name, typ)
	for port, sig := range conns {
		c.SetPort(port, sig)
	}
	return c
}

// Sig1 builds a single-bit SigSpec from wire bit i.
func Sig1(w *netlist.Wire, i int) netlist.SigSpec {
	return netlist.SigSpec{w.Bit(i)}
}

// CellsOfType returns every cell of type typ in m, in declaration order.
func CellsOfType(m *netlist.Module, typ string) []*netlist.Cell {
	var out []*netlist.Cell
	for _, c := range m.Cells {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// DriverOf walks m's cells and returns the cell (and its output port name)
// whose output port connects bit exactly (no canonicalisation: this
// inspects raw connections, mirroring how a human would read the netlist
// dump). ok is false if no cell drives bit.
func DriverOf(m *netlist.Module, bit netlist.SigBit) (cell *netlist.Cell, port string, ok bool) {
	for _, c := range m.Cells {
		c.Ports(func(p string, sig netlist.SigSpec) {
			if ok {
				return
			}
			in, out, known := m.Design.CellPortDirection(c.Type, p)
			_ = in
			if !known || !out {
				return
			}
			for _, b := range sig {
				if b == bit {
					cell, port, ok = c, p, true
					return
				}
			}
		})
		if ok {
			return
		}
	}
	return nil, "", false
}

// ChainUpstream follows DriverOf starting at bit through up to max cells
// and returns the ordered list of cell types encountered, e.g.
// ["CLK_BUF", "IPAD"] for a clock buffer fed by an input pad. Useful for
// asserting P1/P6 without hard-coding intermediate wire names.
func ChainUpstream(m *netlist.Module, bit netlist.SigBit, max int) []string {
	var types []string
	for i := 0; i < max; i++ {
		c, port, ok := DriverOf(m, bit)
		if !ok {
			break
		}
		types = append(types, c.Type)
		sig, ok := c.Port(inputPortGuess(m, c, port))
		if !ok || len(sig) == 0 {
			break
		}
		bit = sig[0]
	}
	return types
}

// inputPortGuess returns the name of the first input port of c other than
// port (the output port already consumed), used by ChainUpstream to step
// to the cell's driver side without the test needing to know port-name
// configuration.
func inputPortGuess(m *netlist.Module, c *netlist.Cell, outPort string) string {
	var found string
	c.Ports(func(p string, _ netlist.SigSpec) {
		if p == outPort || found != "" {
			return
		}
		in, _, known := m.Design.CellPortDirection(c.Type, p)
		if known && in {
			found = p
		}
	})
	return found
}
