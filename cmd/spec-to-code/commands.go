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
	"github.com/hochfrequenz/agentflow/internal/codegen"
	"github.com/hochfrequenz/agentflow/internal/display"
	"github.com/hochfrequenz/agentflow/internal/domain"
	"github.com/hochfrequenz/agentflow/internal/flowspec"
	"github.com/hochfrequenz/agentflow/internal/resolve"
)

var (
	generateDryRun bool
	generateForce  bool
	generateFirst  bool
	historyLimit   int
)

func init() {
	generateCmd := &cobra.Command{
		Use:   "generate SPEC",
		Short: "Generate a flow package from a spec",
		Long: `Generate a flow package from a spec.

SPEC is a file path, a spec name (with or without .flow_spec.yaml), or a
substring matching exactly one spec in the specs directory.`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "show what would be written")
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "replace the generated files of an existing flow")
	generateCmd.Flags().BoolVar(&generateFirst, "first", false, "take the first substring match instead of requiring a unique one")
	rootCmd.AddCommand(generateCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available flow specs",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	rootCmd.AddCommand(listCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generations",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := app.Load(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.ResolveSpec(args[0], generateFirst)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			printSpecs(a, a.Stderr)
		}
		return err
	}
	spec, err := flowspec.Load(path)
	if err != nil {
		return err
	}

	loader := codegen.DefaultLoader(a.Config.Paths.ProjectRoot, a.Config.Paths.TemplatesDir)
	p := codegen.Generate(spec, path)
	files, err := loader.Render(p)
	if err != nil {
		return err
	}
	hash := codegen.ContentHash(files)
	flowDir := codegen.FlowDir(a.Config.Paths.FlowsDir, p)
	a.Logger.Debugw("rendered flow", "flow", p.FlowName, "handlers", len(p.Handlers), "hash", hash)

	store := a.Catalog()
	if store != nil {
		defer store.Close()
		if last, err := store.LastGeneration(flowDir); err == nil && last.ContentHash == hash {
			fmt.Fprintln(a.Stderr, display.Dim(fmt.Sprintf("output unchanged since last generation (%s)", display.Ago(last.GeneratedAt))))
		}
	}

	res, err := codegen.NewWriter(a.Logger).Write(flowDir, files, codegen.WriteOptions{
		Force:  generateForce,
		DryRun: generateDryRun,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	if res.DryRun {
		fmt.Fprintln(a.Stdout, display.Header(fmt.Sprintf("[Dry Run] Would create: %s/", res.Dir)))
		for _, f := range res.Files {
			fmt.Fprintf(a.Stdout, "  - %s (%s)\n", f.Name, display.Size(uint64(f.Size)))
		}
		if res.Existed {
			fmt.Fprintln(a.Stdout, display.Warning("%s already exists", res.Dir))
		}
		return nil
	}

	fmt.Fprintln(a.Stdout, "Created:")
	for _, f := range res.Files {
		fmt.Fprintf(a.Stdout, "  - %s\n", f.Path)
	}
	fmt.Fprintln(a.Stdout, display.Success("Flow generated at: %s", res.Dir))
	fmt.Fprintf(a.Stdout, "Run with: python %s\n", filepath.Join(res.Dir, "run.py"))

	if store != nil {
		err := store.RecordGeneration(&catalog.Generation{
			SpecPath:    path,
			FlowDir:     res.Dir,
			ContentHash: hash,
			FileCount:   len(res.Files),
		})
		if err != nil {
			a.Logger.Warnw("could not record generation", "error", err)
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

	printSpecs(a, a.Stdout)
	return nil
}

func printSpecs(a *app.App, w io.Writer) {
	names, err := resolve.ListSpecs(a.Config.Paths.SpecsDir)
	if err != nil {
		a.Logger.Warnw("could not list specs", "error", err)
		return
	}
	if len(names) == 0 {
		fmt.Fprintf(w, "No specs found in %s\n", a.Config.Paths.SpecsDir)
		return
	}
	fmt.Fprintln(w, "Available specs:")
	for _, n := range names {
		fmt.Fprintf(w, "  - %s\n", n)
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

	gens, err := store.ListGenerations(historyLimit)
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		fmt.Fprintln(a.Stdout, "No generations recorded")
		return nil
	}

	w := tabwriter.NewWriter(a.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tFLOW\tFILES\tHASH\tSPEC")
	for _, g := range gens {
		hash := g.ContentHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			display.Ago(g.GeneratedAt), filepath.Base(g.FlowDir), g.FileCount, hash, g.SpecPath)
	}
	return w.Flush()
}
