package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/agentflow/internal/app"
	"github.com/hochfrequenz/agentflow/internal/catalog"
	"github.com/hochfrequenz/agentflow/internal/display"
	"github.com/hochfrequenz/agentflow/internal/domain"
	"github.com/hochfrequenz/agentflow/internal/flowspec"
	"github.com/hochfrequenz/agentflow/internal/tracelog"
)

var (
	convertOutput   string
	convertStdout   bool
	convertPhaseMap string
	convertFirst    bool
	historyLimit    int
)

func init() {
	convertCmd := &cobra.Command{
		Use:   "convert RUN",
		Short: "Convert a run's trace into a flow spec",
		Long: `Convert a run's trace into a flow spec.

RUN is a run directory, an exact run name, or a substring matching exactly
one run. Ambiguous substrings open a picker on a terminal and fail
otherwise, unless --first is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runConvert,
	}
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "spec path (default <specs_dir>/<run_name>.flow_spec.yaml)")
	convertCmd.Flags().BoolVar(&convertStdout, "stdout", false, "print the spec instead of saving it")
	convertCmd.Flags().StringVar(&convertPhaseMap, "phase-map", "", "YAML list of {name, role} naming the plan steps")
	convertCmd.Flags().BoolVar(&convertFirst, "first", false, "take the first substring match instead of requiring a unique one")
	convertCmd.MarkFlagsMutuallyExclusive("output", "stdout")
	rootCmd.AddCommand(convertCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs available for conversion",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	rootCmd.AddCommand(listCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversions",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	dir, err := a.ResolveRun(args[0], convertFirst)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			printRuns(a, a.Stderr)
		}
		return err
	}
	run := tracelog.OpenRun(dir)
	if !run.HasTrace() {
		return fmt.Errorf("no %s found in %s: %w", tracelog.TraceFileName, dir, domain.ErrNotFound)
	}

	var phases flowspec.PhaseMap
	if convertPhaseMap != "" {
		phases, err = flowspec.LoadPhaseMap(convertPhaseMap)
	} else {
		phases, err = flowspec.RunPhaseMap(run)
	}
	if err != nil {
		return err
	}

	spec, n, err := flowspec.ConvertRun(run, flowspec.WithPhaseMap(phases))
	if err != nil {
		return err
	}
	a.Logger.Debugw("converted trace", "run", run.Name(), "events", n, "phases", len(spec.Phases))

	if convertStdout {
		data, err := flowspec.Marshal(spec)
		if err != nil {
			return err
		}
		_, err = a.Stdout.Write(data)
		return err
	}

	out := convertOutput
	if out == "" {
		out = flowspec.DefaultSpecPath(a.Config.Paths.SpecsDir, spec.RunName)
	}
	if err := flowspec.Save(out, spec); err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, display.Success("Flow spec saved to: %s", out))
	fmt.Fprintf(a.Stdout, "  %d events, %d phases, %d artifacts\n", n, len(spec.Phases), len(spec.Artifacts))

	if store := a.Catalog(); store != nil {
		defer store.Close()
		err := store.RecordConversion(&catalog.Conversion{
			RunDir:     run.Dir,
			RunName:    spec.RunName,
			SpecPath:   out,
			PhaseCount: len(spec.Phases),
			EventCount: n,
		})
		if err != nil {
			a.Logger.Warnw("could not record conversion", "error", err)
		}
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	printRuns(a, a.Stdout)
	return nil
}

func printRuns(a *app.App, w io.Writer) {
	runs, err := tracelog.ListRuns(a.Config.Paths.RunsDir)
	if err != nil {
		a.Logger.Warnw("could not list runs", "error", err)
		return
	}
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs found in %s\n", a.Config.Paths.RunsDir)
		return
	}
	fmt.Fprintln(w, "Available runs:")
	for _, r := range runs {
		line := "  - " + r.Name()
		if !r.HasTrace() {
			line += " " + display.Dim("(no trace)")
		}
		fmt.Fprintln(w, line)
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	store := a.Catalog()
	if store == nil {
		fmt.Fprintln(a.Stdout, "Catalog is disabled")
		return nil
	}
	defer store.Close()

	conversions, err := store.ListConversions(historyLimit)
	if err != nil {
		return err
	}
	if len(conversions) == 0 {
		fmt.Fprintln(a.Stdout, "No conversions recorded")
		return nil
	}

	w := tabwriter.NewWriter(a.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tRUN\tPHASES\tEVENTS\tSPEC")
	for _, c := range conversions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			display.Ago(c.ConvertedAt), filepath.Base(c.RunDir), c.PhaseCount, c.EventCount, c.SpecPath)
	}
	return w.Flush()
}
