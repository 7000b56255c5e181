// Package flowspec reduces a run's trace into a staged flow spec and
// reads and writes the resulting YAML documents.
package flowspec

import (
	"github.com/hochfrequenz/agentflow/internal/domain"
	"github.com/hochfrequenz/agentflow/internal/tracelog"
)

// ToolMarker is recorded in a phase's tools for every successful output
const ToolMarker = "python"

// DefaultRunName is used when the trace has no init event
const DefaultRunName = "unknown"

// Option configures a conversion
type Option func(*converter)

// WithPhaseMap names plan steps from m instead of the default table.
// A nil map leaves the default in place.
func WithPhaseMap(m PhaseMap) Option {
	return func(c *converter) {
		if m != nil {
			c.phases = m
		}
	}
}

type converter struct {
	phases PhaseMap

	spec        *domain.FlowSpec
	seenInit    bool
	seenPlan    bool
	seenOutputs map[string]bool
}

// Convert reduces events into a flow spec in a single pass. It performs
// no I/O and the result depends only on its arguments.
func Convert(events []domain.Event, opts ...Option) *domain.FlowSpec {
	c := &converter{
		phases: DefaultPhaseMap,
		spec: &domain.FlowSpec{
			RunName:   DefaultRunName,
			Phases:    []*domain.Phase{},
			Artifacts: []string{},
		},
		seenOutputs: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, ev := range events {
		c.apply(ev)
	}
	return c.spec
}

func (c *converter) apply(ev domain.Event) {
	switch ev.Kind {
	case domain.KindInit:
		if c.seenInit {
			return
		}
		c.seenInit = true
		if v := ev.Get("run_name"); v != nil {
			c.spec.RunName = asString(v)
		}

	case domain.KindPlan:
		if c.seenPlan {
			return
		}
		c.seenPlan = true
		c.spec.Goal = ev.Message
		if steps, ok := asStrings(ev.Get("steps")); ok {
			for i, step := range steps {
				e := c.phases.Entry(i)
				c.spec.Phases = append(c.spec.Phases, domain.NewPhase(e.Name, e.Role, step))
			}
		}

	case domain.KindError:
		if p := c.target(); p != nil {
			msg := ev.Message
			if ev.Has("error") {
				msg = asString(ev.Get("error"))
			}
			p.FailureModes = append(p.FailureModes, domain.FailureMode{
				Error:   msg,
				Context: asString(ev.Get("context")),
			})
		}

	case domain.KindStrategyShift:
		if p := c.target(); p != nil {
			p.RecoveryPlaybook = append(p.RecoveryPlaybook, domain.RecoveryStep{
				From:   asString(ev.Get("from")),
				To:     asString(ev.Get("to")),
				Reason: asString(ev.Get("reason")),
			})
		}

	case domain.KindToolResult:
		c.collectArtifact(ev)
		if !truthy(ev.Get("success")) {
			return
		}
		if p := c.target(); p != nil {
			if out := ev.Get("output_file"); truthy(out) {
				p.Outputs = append(p.Outputs, asString(out))
				p.Tools = append(p.Tools, ToolMarker)
			}
			if pkg := ev.Get("package"); truthy(pkg) {
				p.Dependencies = append(p.Dependencies, asString(pkg))
			}
		}

	case domain.KindSummary:
		c.collectArtifact(ev)
		c.spec.FinalSummary = domain.Summary{
			Result:      asString(ev.Get("result")),
			Dataset:     asString(ev.Get("dataset")),
			Rows:        asInt(ev.Get("rows")),
			Cols:        asInt(ev.Get("cols")),
			DataQuality: asString(ev.Get("data_quality")),
			TimeRange:   asString(ev.Get("time_range")),
			Present:     true,
		}
	}
}

// target is the phase observed metadata attaches to
func (c *converter) target() *domain.Phase {
	return c.spec.PhaseByRole(domain.RoleIngestion)
}

func (c *converter) collectArtifact(ev domain.Event) {
	out := ev.Get("output_file")
	if !truthy(out) {
		return
	}
	s := asString(out)
	if c.seenOutputs[s] {
		return
	}
	c.seenOutputs[s] = true
	c.spec.Artifacts = append(c.spec.Artifacts, s)
}

// ConvertRun reads a run's trace and converts it. A run without a trace
// file fails with domain.ErrNotFound. It also returns the number of events
// read.
func ConvertRun(run tracelog.Run, opts ...Option) (*domain.FlowSpec, int, error) {
	if !run.HasTrace() {
		return nil, 0, &domain.IOError{Op: "open trace", Path: run.TracePath(), Err: domain.ErrNotFound}
	}
	events, err := tracelog.ReadTrace(run)
	if err != nil {
		return nil, 0, err
	}
	return Convert(events, opts...), len(events), nil
}
