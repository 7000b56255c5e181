package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/hochfrequenz/agentflow/internal/app"
	"github.com/hochfrequenz/agentflow/internal/config"
	"github.com/hochfrequenz/agentflow/internal/display"
	"github.com/hochfrequenz/agentflow/internal/skills"
)

var (
	installForce bool
	installDir   string
	initForce    bool
)

func init() {
	skillsCmd := &cobra.Command{
		Use:   "skills",
		Short: "List, install and run skills",
		RunE:  missingCommand,
	}

	skillsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered skills",
		Args:  cobra.NoArgs,
		RunE:  runSkillsList,
	}

	skillsInstallCmd := &cobra.Command{
		Use:   "install",
		Short: "Write a SKILL.md for every skill",
		Args:  cobra.NoArgs,
		RunE:  runSkillsInstall,
	}
	skillsInstallCmd.Flags().BoolVar(&installForce, "force", false, "overwrite installed SKILL.md files")
	skillsInstallCmd.Flags().StringVar(&installDir, "dir", "", "skills directory (default paths.skills_dir)")

	skillsRunCmd := &cobra.Command{
		Use:   "run SKILL [INPUT_JSON]",
		Short: "Invoke a skill with JSON input",
		Long: `Invoke a skill with JSON input and print its JSON result.

INPUT_JSON may be omitted or given as "-" to read it from stdin.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runSkillsRun,
	}

	skillsCmd.AddCommand(skillsListCmd, skillsInstallCmd, skillsRunCmd)
	rootCmd.AddCommand(skillsCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration",
		RunE:  missingCommand,
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	configInitCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigInit,
	}
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runSkillsList(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	reg := skills.NewRegistry(a.SkillEnv())
	w := tabwriter.NewWriter(a.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tINPUT\tDESCRIPTION")
	for _, s := range reg.List() {
		params := make([]string, 0, len(s.Input))
		for _, p := range s.Input {
			name := p.Name
			if !p.Required {
				name += "?"
			}
			params = append(params, name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, strings.Join(params, ","), s.Description)
	}
	return w.Flush()
}

func runSkillsInstall(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.Config.Paths.SkillsDir
	if installDir != "" {
		dir = installDir
	}

	reg := skills.NewRegistry(a.SkillEnv())
	written, err := reg.Install(dir, installForce)
	for _, p := range written {
		fmt.Fprintln(a.Stdout, display.Success("Installed %s", p))
	}
	if err != nil {
		return err
	}
	if skipped := len(reg.List()) - len(written); skipped > 0 {
		fmt.Fprintln(a.Stdout, display.Dim(fmt.Sprintf("%d already installed in %s (use --force to overwrite)", skipped, dir)))
	}
	return nil
}

func runSkillsRun(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	var raw []byte
	switch {
	case len(args) == 2 && args[1] != "-":
		raw = []byte(args[1])
	case len(args) == 2 || !display.IsInteractive(os.Stdin):
		raw, err = io.ReadAll(a.Stdin)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := skills.NewRegistry(a.SkillEnv()).Invoke(ctx, args[0], raw)
	if err != nil {
		if errors.Is(err, skills.ErrInvalidInput) {
			a.Logger.Debugw("rejected skill input", "skill", args[0], "input", string(raw))
		}
		return err
	}

	enc := json.NewEncoder(a.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := toml.Marshal(a.Config)
	if err != nil {
		return err
	}
	_, err = a.Stdout.Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()
	if opts.ConfigPath != "" {
		path = opts.ConfigPath
	}
	if len(args) == 1 {
		path = args[0]
	}
	path = config.ExpandPath(path)

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Default().Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println(display.Success("Wrote %s", path))
	return nil
}
