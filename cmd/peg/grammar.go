package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/peg/grammar"
	"github.com/dhamidi/peg/grammars/vhdl"
	"github.com/dhamidi/peg/source"
)

// builtinPrefix selects one of the grammars compiled into the binary.
const builtinPrefix = "builtin:"

var builtins = map[string]func() (*grammar.Grammar, error){
	"vhdl": vhdl.Grammar,
}

// loadGrammar compiles the grammar named by path. Files ending in .ebnf are
// read as EBNF and need a start production; everything else is PEG text.
func loadGrammar(path, start string) (*grammar.Grammar, error) {
	if path == "" {
		return nil, fmt.Errorf("no grammar given (use --grammar)")
	}

	if name, ok := strings.CutPrefix(path, builtinPrefix); ok {
		load, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown builtin grammar %q", name)
		}
		g, err := load()
		if err != nil {
			return nil, err
		}
		if start != "" {
			return g.WithStart(start)
		}
		return g, nil
	}

	if filepath.Ext(path) == ".ebnf" {
		if start == "" {
			return nil, fmt.Errorf("%s: EBNF grammars need --start", path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open grammar: %w", err)
		}
		defer f.Close()
		return grammar.ParseEBNF(path, f, start)
	}

	file, err := source.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	var opts []grammar.Option
	if start != "" {
		opts = append(opts, grammar.WithStart(start))
	}
	return grammar.CompileFile(file, opts...)
}
