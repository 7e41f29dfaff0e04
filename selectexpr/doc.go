/*
Package selectexpr implements the small selection sub-language clkbufmap
accepts through its optional --select flag: it answers "is this wire a
candidate for buffer insertion", given terms of the form `w:<glob>` (wire
name) and `a:<attr>` / `a:<attr>=<value>` (attribute predicates), combined
with the `%u` (union) and `%d` (difference) set operators in postfix (RPN)
order, e.g.:

	w:* a:buffer_type=none a:buffer_type=bufr %u %d

This is a deliberately small subset of Yosys's own selection language,
covering only the operators exercised by clkbufmap's own documentation,
not a general-purpose replacement for it.
*/
package selectexpr
