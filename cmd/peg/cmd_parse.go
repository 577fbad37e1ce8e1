package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/peg/format"
	"github.com/dhamidi/peg/parse"
	"github.com/dhamidi/peg/source"
)

type parseFlags struct {
	grammar  string
	start    string
	partial  bool
	maxDepth int
	trace    bool
}

func (f *parseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.grammar, "grammar", "g", "", "grammar file (.peg, .ebnf or builtin:vhdl)")
	cmd.Flags().StringVar(&f.start, "start", "", "start rule (default: the grammar's start rule)")
	cmd.Flags().BoolVar(&f.partial, "partial", false, "accept input that matches only a prefix")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "maximum rule nesting depth (0: default 10000, -1: unlimited)")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "log every rule invocation at debug level")
}

func (f *parseFlags) options() []parse.Option {
	opts := []parse.Option{parse.WithMaxDepth(f.maxDepth)}
	if f.start != "" {
		opts = append(opts, parse.WithStart(f.start))
	}
	if !f.partial {
		opts = append(opts, parse.RequireEOF())
	}
	if f.trace {
		opts = append(opts, parse.WithTrace(traceLog))
	}
	return opts
}

func newParseCmd() *cobra.Command {
	var flags parseFlags
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse --grammar <grammar> <file>",
		Short: "Parse a file and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(flags.grammar, flags.start)
			if err != nil {
				return err
			}
			enc, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			file, err := readInput(args[0])
			if err != nil {
				return err
			}
			tree, err := parse.ParseFile(g, file, flags.options()...)
			if err != nil {
				return err
			}
			if err := enc.Encode(tree); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format ("+strings.Join(format.Names, ", ")+")")

	return cmd
}

// readInput reads path, or standard input when path is "-".
func readInput(path string) (*source.File, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return source.NewFile("<stdin>", data), nil
	}
	file, err := source.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return file, nil
}
