package netlist

// Attribute names in the clock-buffer vocabulary. These are plain
// wire/module attributes; nothing in this package attaches special meaning
// to them (clkbuf is the package that interprets them).
const (
	// AttrClkbufInhibit opts a wire out of buffer insertion entirely.
	AttrClkbufInhibit = "clkbuf_inhibit"
	// AttrClkbufDriver marks a cell output port bit as already emitting a
	// buffered clock.
	AttrClkbufDriver = "clkbuf_driver"
	// AttrClkbufSink marks a cell input port bit as requiring a buffered
	// clock.
	AttrClkbufSink = "clkbuf_sink"
	// AttrClkbufInv names, on one port of an inverter-through cell, the
	// partner port on the other side of the inversion.
	AttrClkbufInv = "clkbuf_inv"
)
