package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/peg/config"
	"github.com/dhamidi/peg/format"
)

const version = "0.1.0"

func main() {
	var verbosity int
	var logFile string
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "peg",
		Short:         "Parsing expression grammar toolkit",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logFile != "" {
				commonlog.Configure(verbosity, &logFile)
			} else {
				commonlog.Configure(verbosity, nil)
			}
			if configFile != "" {
				return config.Apply(cmd, configFile, true)
			}
			if config.Exists(config.DefaultFile) {
				return config.Apply(cmd, config.DefaultFile, false)
			}
			return config.Apply(cmd, "", false)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default "+config.DefaultFile+" when present)")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newReplCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newEbnfCmd())

	if err := rootCmd.Execute(); err != nil {
		format.WriteError(os.Stderr, err)
		os.Exit(1)
	}
}
