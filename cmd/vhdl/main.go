// Command vhdl checks VHDL-2008 source files against the built-in grammar.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/peg/format"
	"github.com/dhamidi/peg/grammars/vhdl"
	"github.com/dhamidi/peg/parse"
	"github.com/dhamidi/peg/source"
)

// exitError carries a message that has already been printed.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	var exit exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exit):
		return exit.code
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var inputFile string
	var outputFormat string
	var verbosity int
	var trace bool

	cmd := &cobra.Command{
		Use:           "vhdl [file]",
		Short:         "Check a VHDL-2008 source file for syntax errors",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			commonlog.Configure(verbosity, nil)

			if len(args) == 1 {
				if inputFile != "" && inputFile != args[0] {
					return fmt.Errorf("input file given twice: %q and %q", inputFile, args[0])
				}
				inputFile = args[0]
			}
			if inputFile == "" {
				return cmd.Usage()
			}

			enc, err := format.New(outputFormat, stdout)
			if err != nil {
				return err
			}

			if err := checkPath(stdout, inputFile); err != nil {
				return err
			}

			file, err := source.ReadFile(inputFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%q size is %d\n", inputFile, file.Len())

			g, err := vhdl.Grammar()
			if err != nil {
				return fmt.Errorf("compile grammar: %w", err)
			}
			opts := []parse.Option{parse.RequireEOF()}
			if trace {
				opts = append(opts, parse.WithTrace(commonlog.GetLogger("vhdl.trace")))
			}
			tree, err := parse.ParseFile(g, file, opts...)
			if err != nil {
				format.WriteError(stderr, err)
				return exitError{code: 1}
			}
			if err := enc.Encode(tree); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVarP(&inputFile, "input-file", "i", "", "input file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "none", "syntax tree output ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	cmd.Flags().BoolVar(&trace, "trace", false, "log every rule invocation (with -vv)")

	return cmd
}

// checkPath rejects paths that are missing or not regular files.
func checkPath(w io.Writer, path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(w, "Error: %q does not exist; please specify a file.\n", path)
		return exitError{code: 1}
	case err != nil:
		return err
	case info.IsDir():
		fmt.Fprintf(w, "Error: %q is a directory; please specify a file.\n", path)
		return exitError{code: 1}
	case !info.Mode().IsRegular():
		fmt.Fprintf(w, "Error: %q exists, but is not a regular file or directory; please specify a file.\n", path)
		return exitError{code: 1}
	}
	return nil
}
