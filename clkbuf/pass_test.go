package clkbuf_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/hdlkit/clkbufmap/clkbuf"
	"github.com/hdlkit/clkbufmap/clkbuftest"
	"github.com/hdlkit/clkbufmap/netlist"
)

func newConfig(t *testing.T, buf, inpad bool) *clkbuf.Config {
	t.Helper()
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	cfg := &clkbuf.Config{Log: log}
	if buf {
		cfg.Buf = clkbuf.ParsePortPair("CLK_BUF", "O:I")
	}
	if inpad {
		cfg.Inpad = clkbuf.ParsePortPair("IPAD", "O:I")
	}
	return cfg
}

// Scenario 1: simple driver-sink, both -buf and -inpad configured.
func TestSimpleDriverSink(t *testing.T) {
	d := netlist.NewDesign()
	clkbuftest.Blackbox(t, d, "FF", clkbuftest.PortSpec{Name: "C", Width: 1, Input: true, Sink: true})
	clkbuftest.Blackbox(t, d, "CLK_BUF",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true, Driver: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)
	clkbuftest.Blackbox(t, d, "IPAD",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)

	top := clkbuftest.Top(t, d, "top")
	clk, err := top.AddPort("clk", 1, true, false)
	require.NoError(t, err)
	clkbuftest.Inst(t, top, "ff1", "FF", map[string]netlist.SigSpec{
		"C": clkbuftest.Sig1(clk, 0),
	})

	cfg := newConfig(t, true, true)
	require.NoError(t, clkbuf.Run(d, cfg))

	require.Len(t, clkbuftest.CellsOfType(top, "CLK_BUF"), 1)
	require.Len(t, clkbuftest.CellsOfType(top, "IPAD"), 1)

	ff, _ := top.Wire("clk") // port now names the fresh external wire
	require.True(t, ff.PortInput)

	ffCell := clkbuftest.CellsOfType(top, "FF")[0]
	sig, ok := ffCell.Port("C")
	require.True(t, ok)
	chain := clkbuftest.ChainUpstream(top, sig[0], 4)
	require.Equal(t, []string{"CLK_BUF", "IPAD"}, chain)
}

// Scenario 2: a buffer already present upstream of the sink inserts
// nothing new.
func TestAlreadyBuffered(t *testing.T) {
	d := netlist.NewDesign()
	clkbuftest.Blackbox(t, d, "FF", clkbuftest.PortSpec{Name: "C", Width: 1, Input: true, Sink: true})
	clkbuftest.Blackbox(t, d, "CLK_BUF",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true, Driver: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)

	top := clkbuftest.Top(t, d, "top")
	clk, err := top.AddPort("clk", 1, true, false)
	require.NoError(t, err)
	q, err := top.AddWire("q", 1)
	require.NoError(t, err)
	clkbuftest.Inst(t, top, "buf1", "CLK_BUF", map[string]netlist.SigSpec{
		"I": clkbuftest.Sig1(clk, 0),
		"O": clkbuftest.Sig1(q, 0),
	})
	clkbuftest.Inst(t, top, "ff1", "FF", map[string]netlist.SigSpec{
		"C": clkbuftest.Sig1(q, 0),
	})

	cfg := newConfig(t, true, false)
	require.NoError(t, clkbuf.Run(d, cfg))

	require.Len(t, top.Cells, 2) // no new cells: buf1 and ff1 only
	require.Len(t, clkbuftest.CellsOfType(top, "CLK_BUF"), 1)
}

// Scenario 3: a sink behind an inverter pulls the buffer upstream of the
// inverter, and the inverter's output is never itself buffered.
func TestInverterPullsBufferUpstream(t *testing.T) {
	d := netlist.NewDesign()
	clkbuftest.Blackbox(t, d, "FF", clkbuftest.PortSpec{Name: "C", Width: 1, Input: true, Sink: true})
	clkbuftest.Blackbox(t, d, "INV",
		clkbuftest.PortSpec{Name: "A", Width: 1, Input: true},
		clkbuftest.PortSpec{Name: "Y", Width: 1, Output: true, Inv: "A"},
	)
	clkbuftest.Blackbox(t, d, "CLK_BUF",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true, Driver: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)
	clkbuftest.Blackbox(t, d, "IPAD",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)

	top := clkbuftest.Top(t, d, "top")
	clk, err := top.AddPort("clk", 1, true, false)
	require.NoError(t, err)
	y, err := top.AddWire("y", 1)
	require.NoError(t, err)
	clkbuftest.Inst(t, top, "inv1", "INV", map[string]netlist.SigSpec{
		"A": clkbuftest.Sig1(clk, 0),
		"Y": clkbuftest.Sig1(y, 0),
	})
	clkbuftest.Inst(t, top, "ff1", "FF", map[string]netlist.SigSpec{
		"C": clkbuftest.Sig1(y, 0),
	})

	cfg := newConfig(t, true, true)
	require.NoError(t, clkbuf.Run(d, cfg))

	require.Len(t, clkbuftest.CellsOfType(top, "CLK_BUF"), 1)
	require.Len(t, clkbuftest.CellsOfType(top, "IPAD"), 1)

	inv := clkbuftest.CellsOfType(top, "INV")[0]
	aSig, ok := inv.Port("A")
	require.True(t, ok)
	chain := clkbuftest.ChainUpstream(top, aSig[0], 4)
	require.Equal(t, []string{"CLK_BUF", "IPAD"}, chain)

	ySig, ok := inv.Port("Y")
	require.True(t, ok)
	driver, _, ok := clkbuftest.DriverOf(top, ySig[0])
	require.True(t, ok)
	require.Equal(t, "INV", driver.Type) // y is still driven only by inv1 itself
}

// Scenario 4: a generated clock (DFFRE output feeding another DFFRE's
// clock input) gets FCLK_BUF instead of the configured buffer type, with a
// warning logged.
func TestGeneratedClockUsesFClkBuf(t *testing.T) {
	d := netlist.NewDesign()
	clkbuftest.Blackbox(t, d, "DFFRE",
		clkbuftest.PortSpec{Name: "C", Width: 1, Input: true, Sink: true},
		clkbuftest.PortSpec{Name: "Q", Width: 1, Output: true},
	)
	clkbuftest.Blackbox(t, d, "CLK_BUF",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true, Driver: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)
	clkbuftest.Blackbox(t, d, "FCLK_BUF",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true, Driver: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)

	top := clkbuftest.Top(t, d, "top")
	clk, err := top.AddPort("clk", 1, true, false)
	require.NoError(t, err)
	q1, err := top.AddWire("q1", 1)
	require.NoError(t, err)
	clkbuftest.Inst(t, top, "ff1", "DFFRE", map[string]netlist.SigSpec{
		"C": clkbuftest.Sig1(clk, 0),
		"Q": clkbuftest.Sig1(q1, 0),
	})
	clkbuftest.Inst(t, top, "ff2", "DFFRE", map[string]netlist.SigSpec{
		"C": clkbuftest.Sig1(q1, 0),
	})

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	cfg := &clkbuf.Config{Buf: clkbuf.ParsePortPair("CLK_BUF", "O:I"), Log: log}
	require.NoError(t, clkbuf.Run(d, cfg))

	require.Len(t, clkbuftest.CellsOfType(top, "CLK_BUF"), 1) // buffers ff1's clk
	require.Len(t, clkbuftest.CellsOfType(top, "FCLK_BUF"), 1)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	require.True(t, warned)
}

// Scenario 6: an inhibited wire is left untouched, and if it is an output
// port it is still exported to the catalogue as already-buffered.
func TestInhibitedWireSkipped(t *testing.T) {
	d := netlist.NewDesign()
	clkbuftest.Blackbox(t, d, "FF", clkbuftest.PortSpec{Name: "C", Width: 1, Input: true, Sink: true})

	sub := clkbuftest.Regular(t, d, "sub")
	out, err := sub.AddPort("clkout", 1, false, true)
	require.NoError(t, err)
	out.SetBoolAttr(netlist.AttrClkbufInhibit, true)
	clkbuftest.Inst(t, sub, "ff1", "FF", map[string]netlist.SigSpec{
		"C": clkbuftest.Sig1(out, 0),
	})

	cfg := newConfig(t, true, false)
	require.NoError(t, clkbuf.Run(d, cfg))

	require.Len(t, sub.Cells, 1) // only ff1, no buffer inserted
}

// P3 (idempotence): running the pass twice inserts nothing new the second
// time.
func TestIdempotent(t *testing.T) {
	d := netlist.NewDesign()
	clkbuftest.Blackbox(t, d, "FF", clkbuftest.PortSpec{Name: "C", Width: 1, Input: true, Sink: true})
	clkbuftest.Blackbox(t, d, "CLK_BUF",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true, Driver: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)
	clkbuftest.Blackbox(t, d, "IPAD",
		clkbuftest.PortSpec{Name: "O", Width: 1, Output: true},
		clkbuftest.PortSpec{Name: "I", Width: 1, Input: true},
	)

	top := clkbuftest.Top(t, d, "top")
	clk, err := top.AddPort("clk", 1, true, false)
	require.NoError(t, err)
	clkbuftest.Inst(t, top, "ff1", "FF", map[string]netlist.SigSpec{
		"C": clkbuftest.Sig1(clk, 0),
	})

	cfg := newConfig(t, true, true)
	require.NoError(t, clkbuf.Run(d, cfg))
	afterFirst := len(top.Cells)

	cfg2 := newConfig(t, true, true)
	require.NoError(t, clkbuf.Run(d, cfg2))
	require.Equal(t, afterFirst, len(top.Cells))
}

func TestConfigValidateRequiresBufOrInpad(t *testing.T) {
	cfg := &clkbuf.Config{}
	require.Error(t, cfg.Validate())
}
