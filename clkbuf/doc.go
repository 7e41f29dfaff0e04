/*
Package clkbuf implements the clock-buffer insertion pass: given a
hierarchical netlist (see the netlist package), it inserts dedicated clock
buffer cells, and optionally input-pad cells at top-level clock inputs,
between clock-signal drivers and the cell input pins that consume them.

The pass is a fixed-point propagation of clock-buffer requirements across
module hierarchy and through clock-path inverters, coupled with structural
rewrites that insert buffer cells exactly once per net, rewire drivers onto
them, and preserve port identities on module boundaries.

Run is the entry point, configured through Config; the stages of the
algorithm (classification, inverter propagation, insertion, rewiring) are
unexported internals that Run drives in turn.
*/
package clkbuf
