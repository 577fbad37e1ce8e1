package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/peg/repl"
)

func newReplCmd() *cobra.Command {
	var grammarPath string
	var start string
	var outputFormat string
	var historyPath string

	cmd := &cobra.Command{
		Use:   "repl --grammar <grammar>",
		Short: "Parse lines typed at an interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(grammarPath, start)
			if err != nil {
				return err
			}
			if historyPath == "" {
				if home, err := os.UserHomeDir(); err == nil {
					historyPath = filepath.Join(home, ".peg_history")
				}
			}
			return repl.New(g, historyPath, cmd.OutOrStdout(), outputFormat).Loop()
		},
	}

	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "grammar file (.peg, .ebnf or builtin:vhdl)")
	cmd.Flags().StringVar(&start, "start", "", "start rule")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format")
	cmd.Flags().StringVar(&historyPath, "history", "", "history file (default ~/.peg_history)")

	return cmd
}
