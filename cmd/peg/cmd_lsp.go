package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/peg/lsp"
)

func newLSPCmd() *cobra.Command {
	var flags parseFlags

	cmd := &cobra.Command{
		Use:   "lsp --grammar <grammar>",
		Short: "Start a Language Server Protocol server for files of one grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(flags.grammar, flags.start)
			if err != nil {
				return err
			}
			server := lsp.New(g, version, flags.options()...)
			return server.RunStdio()
		},
	}

	flags.register(cmd)

	return cmd
}
