package skills

import (
	"context"
	"fmt"

	"github.com/hochfrequenz/agentflow/internal/codegen"
	"github.com/hochfrequenz/agentflow/internal/domain"
	"github.com/hochfrequenz/agentflow/internal/flowspec"
	"github.com/hochfrequenz/agentflow/internal/resolve"
	"github.com/hochfrequenz/agentflow/internal/tracelog"
)

func builtin() []Skill {
	return []Skill{
		{
			ID:          "agent-trace",
			Name:        "Agent Trace",
			Description: "Record an agent run as an append-only trace of events.",
			Input: []Param{
				{Name: "action", Type: "string", Required: true, Description: "init or log"},
				{Name: "run_name", Type: "string", Description: "name of the new run (init)"},
				{Name: "run_dir", Type: "string", Description: "run directory to append to (log)"},
				{Name: "type", Type: "string", Description: "event type (log)"},
				{Name: "message", Type: "string", Description: "event message (log)"},
				{Name: "data", Type: "object", Description: "event data (log)"},
			},
			Usage: []string{
				"agent-trace init <run_name>",
				"agent-trace log <run_dir> <type> <message> [data_json]",
				"agent-trace list",
				"agent-trace read <run_dir>",
			},
			Invoke: invokeTrace,
		},
		{
			ID:          "trace-to-flow",
			Name:        "Trace to Flow",
			Description: "Convert a recorded run trace into a phase-structured flow spec.",
			Input: []Param{
				{Name: "run", Type: "string", Required: true, Description: "run directory, exact name or unique substring"},
				{Name: "output", Type: "string", Description: "spec path, defaults to <specs_dir>/<run_name>.flow_spec.yaml"},
			},
			Usage: []string{
				"trace-to-flow convert <run> [--output path | --stdout]",
				"trace-to-flow list",
			},
			Invoke: invokeConvert,
		},
		{
			ID:          "spec-to-code",
			Name:        "Spec to Code",
			Description: "Generate a LangGraph pipeline skeleton from a flow spec.",
			Input: []Param{
				{Name: "spec", Type: "string", Required: true, Description: "spec path, exact id or unique substring"},
				{Name: "force", Type: "boolean", Description: "replace an existing flow"},
				{Name: "dry_run", Type: "boolean", Description: "report without writing"},
			},
			Usage: []string{
				"spec-to-code generate <spec> [--dry-run] [--force]",
				"spec-to-code list",
			},
			Invoke: invokeGenerate,
		},
	}
}

func invokeTrace(_ context.Context, env Env, input map[string]any) (map[string]any, error) {
	w := tracelog.NewWriter(env.RunsDir)

	switch action := str(input, "action"); action {
	case "init":
		name := str(input, "run_name")
		if name == "" {
			return nil, fmt.Errorf("%w: run_name is required for init", ErrInvalidInput)
		}
		run, err := w.InitRun(name)
		if err != nil {
			return nil, err
		}
		return map[string]any{"run_dir": run.Dir}, nil

	case "log":
		dir, kind := str(input, "run_dir"), str(input, "type")
		if dir == "" || kind == "" {
			return nil, fmt.Errorf("%w: run_dir and type are required for log", ErrInvalidInput)
		}
		data, _ := input["data"].(map[string]any)
		ev, err := w.Log(tracelog.OpenRun(dir), domain.EventKind(kind), str(input, "message"), data)
		if err != nil {
			return nil, err
		}
		return map[string]any{"event": ev}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}
}

func invokeConvert(_ context.Context, env Env, input map[string]any) (map[string]any, error) {
	dir, err := resolve.ResolveRun(str(input, "run"), env.RunsDir)
	if err != nil {
		return nil, err
	}
	run := tracelog.OpenRun(dir)

	pm, err := flowspec.RunPhaseMap(run)
	if err != nil {
		return nil, err
	}
	spec, n, err := flowspec.ConvertRun(run, flowspec.WithPhaseMap(pm))
	if err != nil {
		return nil, err
	}

	out := str(input, "output")
	if out == "" {
		out = flowspec.DefaultSpecPath(env.SpecsDir, spec.RunName)
	}
	if err := flowspec.Save(out, spec); err != nil {
		return nil, err
	}
	env.Logger.Infow("flow spec saved", "path", out, "events", n, "phases", len(spec.Phases))

	return map[string]any{
		"spec_path": out,
		"run_name":  spec.RunName,
		"phases":    len(spec.Phases),
		"events":    n,
	}, nil
}

func invokeGenerate(_ context.Context, env Env, input map[string]any) (map[string]any, error) {
	path, err := resolve.ResolveSpec(str(input, "spec"), env.SpecsDir)
	if err != nil {
		return nil, err
	}
	spec, err := flowspec.Load(path)
	if err != nil {
		return nil, err
	}

	opts := codegen.WriteOptions{Force: boolean(input, "force"), DryRun: boolean(input, "dry_run")}
	loader := codegen.DefaultLoader(env.ProjectRoot, env.TemplatesDir)
	res, err := codegen.Build(spec, path, env.FlowsDir, loader, codegen.NewWriter(env.Logger), opts)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(res.Write.Files))
	for _, f := range res.Write.Files {
		files = append(files, f.Path)
	}
	return map[string]any{
		"flow_dir":     res.Write.Dir,
		"files":        files,
		"content_hash": res.Hash,
		"dry_run":      opts.DryRun,
	}, nil
}
