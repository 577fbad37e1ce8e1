package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhamidi/peg/format"
	"github.com/dhamidi/peg/watch"
)

func newWatchCmd() *cobra.Command {
	var flags parseFlags
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "watch --grammar <grammar> <file>...",
		Short: "Reparse files whenever they or the grammar change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			enc, err := format.New(outputFormat, out)
			if err != nil {
				return err
			}

			report := func(res watch.Result) {
				if res.Err != nil {
					fmt.Fprintf(out, "✗ %s (%s)\n", res.Path, res.Duration)
					format.WriteError(out, res.Err)
					return
				}
				fmt.Fprintf(out, "✓ %s (%s)\n", res.Path, res.Duration)
				if res.Tree != nil {
					if err := enc.Encode(res.Tree); err != nil {
						fmt.Fprintf(out, "encode: %v\n", err)
					}
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch.New(flags.grammar, args, report, flags.options()...).Run(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "none", "output format for successful parses")

	return cmd
}
