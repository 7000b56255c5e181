package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/agentflow/internal/app"
	"github.com/hochfrequenz/agentflow/internal/display"
	"github.com/hochfrequenz/agentflow/internal/domain"
	"github.com/hochfrequenz/agentflow/internal/tracelog"
)

var (
	listLong    bool
	readFollow  bool
	readOneline bool
)

func init() {
	initCmd := &cobra.Command{
		Use:   "init RUN_NAME",
		Short: "Create a new run and print its directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}
	rootCmd.AddCommand(initCmd)

	logCmd := &cobra.Command{
		Use:   "log RUN_DIR TYPE MESSAGE [DATA_JSON]",
		Short: "Append one event to a run's trace",
		Args:  cobra.RangeArgs(3, 4),
		RunE:  runLog,
	}
	rootCmd.AddCommand(logCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, most recent first",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show event counts and last activity")
	rootCmd.AddCommand(listCmd)

	readCmd := &cobra.Command{
		Use:   "read RUN",
		Short: "Print every event of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
	readCmd.Flags().BoolVarP(&readFollow, "follow", "f", false, "keep printing events as they are appended")
	readCmd.Flags().BoolVar(&readOneline, "oneline", false, "print one styled line per event instead of JSON")
	rootCmd.AddCommand(readCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := tracelog.NewWriter(a.Config.Paths.RunsDir).InitRun(args[0])
	if err != nil {
		return err
	}
	a.Logger.Debugw("run initialized", "dir", run.Dir)

	fmt.Fprintln(a.Stderr, display.Success("Run initialized: %s", run.Dir))
	fmt.Fprintln(a.Stdout, run.Dir)
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	var data map[string]any
	if len(args) == 4 {
		if data, err = tracelog.ParseData(args[3]); err != nil {
			return err
		}
	}

	kind := domain.EventKind(args[1])
	if !kind.Known() {
		a.Logger.Warnw("unknown event type, writing anyway", "type", kind)
	}

	ev, err := tracelog.NewWriter(a.Config.Paths.RunsDir).Log(runHandle(a, args[0]), kind, args[2], data)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Stdout, display.FormatEvent(ev))
	return nil
}

// runHandle accepts a run directory path or a run name under runs_dir.
// Appending never guesses by substring.
func runHandle(a *app.App, arg string) tracelog.Run {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return tracelog.OpenRun(arg)
	}
	candidate := filepath.Join(a.Config.Paths.RunsDir, arg)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return tracelog.OpenRun(candidate)
	}
	return tracelog.OpenRun(arg)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := tracelog.ListRuns(a.Config.Paths.RunsDir)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.Stdout, "No runs found")
		return nil
	}

	if !listLong {
		for _, r := range runs {
			fmt.Fprintln(a.Stdout, r.Name())
		}
		return nil
	}

	w := tabwriter.NewWriter(a.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tEVENTS\tLAST EVENT")
	for _, r := range runs {
		events, err := tracelog.ReadTrace(r)
		if err != nil {
			a.Logger.Warnw("unreadable trace", "run", r.Name(), "error", err)
			fmt.Fprintf(w, "%s\t?\t-\n", r.Name())
			continue
		}
		last := "-"
		if n := len(events); n > 0 && !events[n-1].Timestamp.IsZero() {
			last = display.Ago(events[n-1].Timestamp)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", r.Name(), len(events), last)
	}
	return w.Flush()
}

func runRead(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	dir, err := a.ResolveRun(args[0], false)
	if err != nil {
		return err
	}
	run := tracelog.OpenRun(dir)

	emit := func(ev domain.Event) error {
		if readOneline {
			_, err := fmt.Fprintln(a.Stdout, display.FormatEvent(ev))
			return err
		}
		return display.WriteEventJSON(a.Stdout, ev)
	}

	if !readFollow {
		events, err := tracelog.ReadTrace(run)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if err := emit(ev); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := tracelog.NewFollower(run, a.Logger)
	f.SetPollInterval(500 * time.Millisecond)
	err = f.Follow(ctx, emit)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
