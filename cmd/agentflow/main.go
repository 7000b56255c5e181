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
		Use:   "agentflow",
		Short: "agentflow - skills and configuration for the trace, flow and codegen tools",
		Long: `agentflow exposes agent-trace, trace-to-flow and spec-to-code as skills
that an agent can invoke with JSON input, installs their SKILL.md
descriptors, and manages the shared configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          missingCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
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
