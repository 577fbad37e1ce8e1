package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var start string
	var printRules bool

	cmd := &cobra.Command{
		Use:   "check <grammar>",
		Short: "Compile a grammar and report errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(args[0], start)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if printRules {
				fmt.Fprint(out, g.String())
				return nil
			}
			fmt.Fprintf(out, "%s: %d rules, start rule %s\n", args[0], g.Len(), g.Start())
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start rule (default: first rule)")
	cmd.Flags().BoolVar(&printRules, "print", false, "print the compiled grammar")

	return cmd
}
