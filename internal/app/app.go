// Package app wires configuration, logging and the catalog together for
// the command line tools.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hochfrequenz/agentflow/internal/catalog"
	"github.com/hochfrequenz/agentflow/internal/config"
	"github.com/hochfrequenz/agentflow/internal/display"
	"github.com/hochfrequenz/agentflow/internal/logging"
	"github.com/hochfrequenz/agentflow/internal/resolve"
	"github.com/hochfrequenz/agentflow/internal/skills"
	"github.com/hochfrequenz/agentflow/tui"
)

// Options are the persistent flags shared by every tool
type Options struct {
	ConfigPath   string
	Verbose      bool
	RunsDir      string
	SpecsDir     string
	FlowsDir     string
	TemplatesDir string
}

// App holds what a command needs to run
type App struct {
	Config *config.Config
	Logger *zap.SugaredLogger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is true when both stdin and stderr are terminals
	Interactive bool
}

// Load reads .env and the configuration, applies flag overrides and
// builds the logger
func Load(opts Options) (*App, error) {
	var dotenvErr error
	if wd, err := os.Getwd(); err == nil {
		dotenvErr = config.LoadDotEnv(wd)
	}

	cfg, err := config.LoadWithLocalFallback(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.RunsDir != "" {
		cfg.Paths.RunsDir = absPath(opts.RunsDir)
	}
	if opts.SpecsDir != "" {
		cfg.Paths.SpecsDir = absPath(opts.SpecsDir)
	}
	if opts.FlowsDir != "" {
		cfg.Paths.FlowsDir = absPath(opts.FlowsDir)
	}
	if opts.TemplatesDir != "" {
		cfg.Paths.TemplatesDir = absPath(opts.TemplatesDir)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	if dotenvErr != nil {
		logger.Warnw("could not load .env", "error", dotenvErr)
	}
	logger.Debugw("configuration loaded",
		"project_root", cfg.Paths.ProjectRoot,
		"runs_dir", cfg.Paths.RunsDir,
		"specs_dir", cfg.Paths.SpecsDir,
		"flows_dir", cfg.Paths.FlowsDir,
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: display.IsInteractive(os.Stdin) && display.IsInteractive(os.Stderr),
	}, nil
}

// Close flushes the logger
func (a *App) Close() {
	_ = a.Logger.Sync()
}

// Catalog opens the history database. It returns nil when the catalog is
// disabled or cannot be opened; the failure is logged, not returned.
func (a *App) Catalog() *catalog.Store {
	if !a.Config.Catalog.Enabled {
		return nil
	}
	store, err := catalog.New(a.Config.Catalog.Path)
	if err != nil {
		a.Logger.Warnw("catalog unavailable", "path", a.Config.Catalog.Path, "error", err)
		return nil
	}
	return store
}

// SkillEnv returns the environment skills run in
func (a *App) SkillEnv() skills.Env {
	return skills.Env{
		ProjectRoot:  a.Config.Paths.ProjectRoot,
		RunsDir:      a.Config.Paths.RunsDir,
		SpecsDir:     a.Config.Paths.SpecsDir,
		FlowsDir:     a.Config.Paths.FlowsDir,
		TemplatesDir: a.Config.Paths.TemplatesDir,
		Logger:       a.Logger,
	}
}

// ResolveRun maps identifier to a run directory. With first set the
// legacy first-substring-match lookup is used.
func (a *App) ResolveRun(identifier string, first bool) (string, error) {
	if first {
		return resolve.FindRun(identifier, a.Config.Paths.RunsDir)
	}
	dir, err := resolve.ResolveRun(identifier, a.Config.Paths.RunsDir)
	return a.choose(dir, err, "runs")
}

// ResolveSpec maps identifier to a spec file. With first set the legacy
// first-substring-match lookup is used.
func (a *App) ResolveSpec(identifier string, first bool) (string, error) {
	if first {
		return resolve.FindSpec(identifier, a.Config.Paths.SpecsDir)
	}
	path, err := resolve.ResolveSpec(identifier, a.Config.Paths.SpecsDir)
	return a.choose(path, err, "specs")
}

// choose lets an interactive user settle an ambiguous lookup
func (a *App) choose(match string, err error, what string) (string, error) {
	var amb *resolve.AmbiguousError
	if !errors.As(err, &amb) {
		return match, err
	}
	if !a.Interactive {
		return "", fmt.Errorf("%w (use an exact name or --first)", err)
	}

	labels := make([]string, len(amb.Candidates))
	for i, c := range amb.Candidates {
		labels[i] = filepath.Base(c)
	}
	picked, perr := tui.Pick(tui.ModelConfig{
		Title:      fmt.Sprintf("%d %s match %q", len(amb.Candidates), what, amb.Identifier),
		Candidates: amb.Candidates,
		Labels:     labels,
	}, a.Stdin, a.Stderr)
	if perr != nil {
		return "", fmt.Errorf("%w: %v", err, perr)
	}
	a.Logger.Debugw("picked candidate", "identifier", amb.Identifier, "choice", picked)
	return picked, nil
}

func absPath(p string) string {
	p = config.ExpandPath(p)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
