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
		Use:   "spec-to-code",
		Short: "Spec to Code - generate runnable flow packages from flow specs",
		Long: `spec-to-code turns a flow spec into a Python package under
<flows_dir>/<flow_name>/ holding __init__.py, graph.py and run.py. Templates
can be overridden per project in .agentflow/templates or with
--templates-dir.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          missingCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.SpecsDir, "specs-dir", "", "directory holding flow specs")
	rootCmd.PersistentFlags().StringVar(&opts.FlowsDir, "flows-dir", "", "directory generated flows are written to")
	rootCmd.PersistentFlags().StringVar(&opts.TemplatesDir, "templates-dir", "", "directory with template overrides")
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
