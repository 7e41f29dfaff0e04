/*
Package netlist provides a minimal in-memory representation of a
hierarchical digital-logic design: modules containing wires and cell
instances, wired together by explicit bit-level connections.

It plays the role that a host synthesis tool's netlist subsystem would play
for the clkbuf package: it owns module/wire/cell storage, port ordering, the
wire-attribute vocabulary clock-buffer insertion depends on, and a
deterministic signal-equivalence resolver. It intentionally does not
implement logic simplification, technology mapping, or any full hardware
description language; a small JSON codec (see json.go) round-trips the
subset of the Yosys JSON netlist schema this repository needs.
*/
package netlist
