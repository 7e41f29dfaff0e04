package clkbuf

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hdlkit/clkbufmap/selectexpr"
)

// CellTypes holds the magic cell-type strings the algorithm dispatches on.
// Exposing them as a configuration record rather than hard-coding them
// into the control flow keeps the pass retargetable to a different
// technology library and easy to exercise in tests with synthetic names.
type CellTypes struct {
	PLL       string
	BootClock string
	IBuf      string
	DFFRE     string
	FClkBuf   string
}

// DefaultCellTypes returns the standard technology-library cell-type names.
func DefaultCellTypes() CellTypes {
	return CellTypes{
		PLL:       "PLL",
		BootClock: "BOOT_CLOCK",
		IBuf:      "I_BUF",
		DFFRE:     "DFFRE",
		FClkBuf:   "FCLK_BUF",
	}
}

// BufferPorts names a buffer or input-pad cell type and the two ports used
// to wire it in: Out faces the clock-network sinks, In faces the driver.
type BufferPorts struct {
	CellType string
	Out, In  string
}

// Configured reports whether a cell type was given at all.
func (b BufferPorts) Configured() bool { return b.CellType != "" }

// ParsePortPair splits a "<celltype> <out>:<in>" pair the way the original
// pass's -buf/-inpad flags do. It tolerates the bare "<out>" form (no
// colon), leaving In empty, the way split_portname_pair does for callers
// that only care about one side.
func ParsePortPair(celltype, ports string) BufferPorts {
	out, in := ports, ""
	if i := strings.IndexByte(ports, ':'); i >= 0 {
		out, in = ports[:i], ports[i+1:]
	}
	return BufferPorts{CellType: celltype, Out: out, In: in}
}

// Config configures one run of the pass.
type Config struct {
	Buf       BufferPorts
	Inpad     BufferPorts
	CellTypes CellTypes
	Select    selectexpr.Selector // nil: all non-clkbuf_inhibit wires are candidates
	Log       *logrus.Logger
}

// Validate enforces the at-entry fatal condition: neither -buf nor
// -inpad supplied.
func (c *Config) Validate() error {
	if !c.Buf.Configured() && !c.Inpad.Configured() {
		return errors.New("clkbufmap: either -buf or -inpad must be specified")
	}
	if c.Buf.Configured() && c.Buf.In == "" {
		return errors.Errorf("clkbufmap: -buf %s requires both port names (out:in)", c.Buf.CellType)
	}
	if c.Inpad.Configured() && c.Inpad.In == "" {
		return errors.Errorf("clkbufmap: -inpad %s requires both port names (out:in)", c.Inpad.CellType)
	}
	if c.CellTypes == (CellTypes{}) {
		c.CellTypes = DefaultCellTypes()
	}
	if c.Log == nil {
		c.Log = logrus.New()
	}
	return nil
}
