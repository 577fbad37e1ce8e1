// Package vhdl embeds a parsing expression grammar for VHDL-2008 based on
// IEEE 1076-2008.
//
// Reserved words are plain case-insensitive literals without a delimiter
// guard, and left-recursive productions of the standard (names with prefix
// and selector chains) are rewritten as repetitions.
package vhdl

import (
	_ "embed"
	"sync"

	"github.com/dhamidi/peg/grammar"
)

// Filename names the embedded grammar in compile errors.
const Filename = "vhdl2008.peg"

// Source is the grammar text.
//
//go:embed vhdl2008.peg
var Source string

var (
	once     sync.Once
	compiled *grammar.Grammar
	err      error
)

// Grammar compiles Source on first use. The result is shared.
func Grammar() (*grammar.Grammar, error) {
	once.Do(func() {
		compiled, err = grammar.CompileString(Filename, Source)
	})
	return compiled, err
}
