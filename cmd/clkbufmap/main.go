// Command clkbufmap runs the clock-buffer insertion pass over a Yosys-style
// JSON netlist, reading from a file or stdin and writing the rewritten
// design back out as JSON.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hdlkit/clkbufmap/clkbuf"
	"github.com/hdlkit/clkbufmap/netlist"
	"github.com/hdlkit/clkbufmap/selectexpr"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	bufFlag    string
	inpadFlag  string
	selectFlag string
	inPath     string
	outPath    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "clkbufmap",
	Short: "Insert clock buffers and input pads into a netlist",
	Long: `clkbufmap reads a JSON netlist, walks its module hierarchy
leaves-first, and inserts clock-buffer and input-pad cells in front of
every clock-tree sink that does not already have one upstream.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&bufFlag, "buf", "", "clock buffer cell: celltype out:in")
	rootCmd.Flags().StringVar(&inpadFlag, "inpad", "", "input pad cell: celltype out:in")
	rootCmd.Flags().StringVar(&selectFlag, "select", "", "selection expression limiting candidate wires")
	rootCmd.Flags().StringVar(&inPath, "in", "-", "input netlist JSON file, - for stdin")
	rootCmd.Flags().StringVar(&outPath, "out", "-", "output netlist JSON file, - for stdout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := &clkbuf.Config{Log: log}
	if bufFlag != "" {
		p, err := parsePortPairFlag("-buf", bufFlag)
		if err != nil {
			return err
		}
		cfg.Buf = p
	}
	if inpadFlag != "" {
		p, err := parsePortPairFlag("-inpad", inpadFlag)
		if err != nil {
			return err
		}
		cfg.Inpad = p
	}
	if selectFlag != "" {
		sel, err := selectexpr.Parse(selectFlag)
		if err != nil {
			return errors.Wrap(err, "clkbufmap: -select")
		}
		cfg.Select = sel
	}

	d, err := readDesign(inPath)
	if err != nil {
		return err
	}

	if err := clkbuf.Run(d, cfg); err != nil {
		return err
	}

	return writeDesign(outPath, d)
}

// parsePortPairFlag mirrors clkbuf.ParsePortPair, reported against the flag
// name that produced it so a malformed "-buf FOO" (no space separating the
// celltype from the port pair) fails with a message pointing at the flag,
// not at Config.Validate's generic wording.
func parsePortPairFlag(flag, value string) (clkbuf.BufferPorts, error) {
	fields := splitOnce(value, ' ')
	celltype, ports := fields[0], fields[1]
	if ports == "" {
		return clkbuf.BufferPorts{}, errors.Errorf("%s %q: expected \"celltype out:in\"", flag, value)
	}
	return clkbuf.ParsePortPair(celltype, ports), nil
}

func splitOnce(s string, sep byte) [2]string {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return [2]string{s[:i], s[i+1:]}
		}
	}
	return [2]string{s, ""}
}

func readDesign(path string) (*netlist.Design, error) {
	if path == "-" {
		return decodeFrom(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "clkbufmap: -in")
	}
	defer f.Close()
	return decodeFrom(f)
}

func decodeFrom(r io.Reader) (*netlist.Design, error) {
	d, err := netlist.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "clkbufmap: decoding netlist")
	}
	return d, nil
}

func writeDesign(path string, d *netlist.Design) error {
	if path == "-" {
		return encodeTo(os.Stdout, d)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "clkbufmap: -out")
	}
	defer f.Close()
	return encodeTo(f, d)
}

func encodeTo(w io.Writer, d *netlist.Design) error {
	if err := netlist.Encode(w, d); err != nil {
		return errors.Wrap(err, "clkbufmap: encoding netlist")
	}
	return nil
}
