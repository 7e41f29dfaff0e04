package clkbuf

import (
	"github.com/pkg/errors"

	"github.com/hdlkit/clkbufmap/netlist"
)

// Run executes the clock-buffer insertion pass over d, mutating it in
// place. cfg.Validate is called internally; callers may call it earlier
// to fail fast on a malformed Config before doing other work.
func Run(d *netlist.Design, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	cat := buildCatalogue(d, cfg)

	for _, m := range orderModules(d) {
		cfg.Log.WithField("module", m.Name).Debug("clkbuf: entering module")
		if err := processModule(m, cat, cfg); err != nil {
			return errors.Wrapf(err, "clkbuf: module %s", m.Name)
		}
	}
	return nil
}

// processModule classifies, buffers, and rewires one module in turn.
// Per-module state (the resolver, the classifier sets, the buffered-bit
// map) lives entirely in local scope and is discarded when this returns.
func processModule(m *netlist.Module, cat *Catalogue, cfg *Config) error {
	r := netlist.NewResolver(m)
	cl := classify(m, cat, cfg.CellTypes, r)
	propagateInverters(m, cat, r, cl)

	st := &moduleState{
		m:             m,
		cat:           cat,
		cfg:           cfg,
		resolver:      r,
		cl:            cl,
		bufferedBits:  make(map[netlist.SigBit]bufferedBit),
		insertedCells: make(map[*netlist.Cell]bool),
	}

	if err := insertAndRewire(st); err != nil {
		return err
	}
	promoteBoundary(st)
	rerouteDrivers(st)
	swapPortNames(st)
	reconnectCombinational(st)
	return nil
}
