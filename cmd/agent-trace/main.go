package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/agentflow/internal/app"
)

var (
	opts    app.Options
	rootCmd = &cobra.Command{
		Use:   "agent-trace",
		Short: "Agent Trace - record agent runs as append-only event logs",
		Long: `agent-trace creates run directories and appends events to their
trace.ndjson log. Each line of the log is one {ts, type, message, data}
record; the log is never rewritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          missingCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.RunsDir, "runs-dir", "", "directory holding run directories")
}

// missingCommand prints usage and fails; a bare invocation is an error
func missingCommand(cmd *cobra.Command, args []string) error {
	_ = cmd.Usage()
	return errors.New("missing command")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
