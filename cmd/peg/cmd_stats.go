package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/peg/format"
	"github.com/dhamidi/peg/parse"
)

func newStatsCmd() *cobra.Command {
	var flags parseFlags
	var limit int

	cmd := &cobra.Command{
		Use:   "stats --grammar <grammar> <file>",
		Short: "Parse a file and print memoization statistics per rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(flags.grammar, flags.start)
			if err != nil {
				return err
			}
			file, err := readInput(args[0])
			if err != nil {
				return err
			}

			var stats parse.Stats
			_, parseErr := parse.ParseFile(g, file, append(flags.options(), parse.WithStats(&stats))...)

			format.WriteStats(cmd.OutOrStdout(), &stats, limit)
			return parseErr
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rules to list (0: all)")

	return cmd
}
