// Package parse runs a grammar against an input buffer with a memoizing
// (packrat) recursive descent matcher.
//
// Every rule invocation is cached by rule, position and whitespace mode, so
// each rule is evaluated at most once per position and parsing runs in time
// linear in the input. A rule that re-enters itself at the same position
// before completing fails that inner call, which makes left-recursive rules
// terminate but never match through the recursive branch.
//
// Parse never panics on malformed input. It returns either a Tree or a
// Diagnostics error locating the furthest point the parse reached.
package parse
