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
		Use:   "trace-to-flow",
		Short: "Trace to Flow - derive flow specs from recorded runs",
		Long: `trace-to-flow reads a run's trace.ndjson and reduces it to a
phase-structured flow spec (<run_name>.flow_spec.yaml). Errors, strategy
shifts and produced outputs observed in the trace are attached to the
ingestion phase.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          missingCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.RunsDir, "runs-dir", "", "directory holding run directories")
	rootCmd.PersistentFlags().StringVar(&opts.SpecsDir, "specs-dir", "", "directory flow specs are written to")
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
