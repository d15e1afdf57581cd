//go:build unix

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgrossb/mush/internal/logger"
)

var (
	// Global flags
	logEnabled bool
	logDir     string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "mush",
	Short: "A line-numbered shell with background pipeline jobs",
	Long: `mush is a small line-numbered shell. Statements entered with a
leading line number are stored in the program listing; bare pipelines run
immediately, in the foreground or (with a trailing &) as background jobs
that can be listed, waited on, canceled, and have their output captured
into variables.`,
	Version: "0.1.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(logger.Options{Enabled: logEnabled, LogDir: logDir}); err != nil {
			return fmt.Errorf("initializing log: %w", err)
		}
		return runREPL(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logEnabled, "log", false, "Enable debug logging to a file")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for debug logs")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
