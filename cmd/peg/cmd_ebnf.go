package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/peg/grammar"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ebnf",
		Short: "EBNF grammar tools",
	}

	cmd.AddCommand(newEbnfCheckCmd())
	cmd.AddCommand(newEbnfConvertCmd())

	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and verify an EBNF grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			eg, err := ebnf.Parse(filename, f)
			if err != nil {
				return err
			}
			if startProduction == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d productions\n", filename, len(eg))
				return nil
			}
			if err := ebnf.Verify(eg, startProduction); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d productions reachable from %s\n", filename, len(eg), startProduction)
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newEbnfConvertCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "convert <file> --start <production>",
		Short: "Convert an EBNF grammar into a parsing expression grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			g, err := grammar.ParseEBNF(args[0], f, startProduction)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), g.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production")
	cmd.MarkFlagRequired("start")

	return cmd
}
