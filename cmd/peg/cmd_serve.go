package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhamidi/peg/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	var cacheSize int
	var maxDepth int
	var maxBody int64
	var grammars []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve grammar compilation and parsing over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []server.Option{
				server.WithCacheSize(cacheSize),
				server.WithMaxDepth(maxDepth),
				server.WithMaxBodyBytes(maxBody),
			}
			for _, arg := range grammars {
				name, path, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("grammar %q: want name=path", arg)
				}
				g, err := loadGrammar(path, "")
				if err != nil {
					return fmt.Errorf("grammar %s: %w", name, err)
				}
				opts = append(opts, server.WithGrammar(name, g))
			}

			s, err := server.New(opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8181", "listen address")
	cmd.Flags().IntVar(&cacheSize, "cache-size", 64, "number of compiled grammars to keep")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum rule nesting depth per parse (0: default 10000, -1: unlimited)")
	cmd.Flags().Int64Var(&maxBody, "max-body", 16<<20, "maximum request body size in bytes")
	cmd.Flags().StringSliceVar(&grammars, "grammar", []string{"vhdl=builtin:vhdl"}, "named grammars as name=path")

	return cmd
}
