// Package codegen turns a flow spec into a LangGraph pipeline skeleton:
// a state declaration, one placeholder node per phase and a linear chain.
package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// Graph markers used as the first and last edge endpoints
const (
	Start = "START"
	End   = "END"
)

// StateField is one key of the generated FlowState TypedDict
type StateField struct {
	Name    string
	Type    string
	Comment string
}

// Handler is the placeholder node generated for one phase
type Handler struct {
	ID           string // node id, also the state key prefix
	Func         string
	Phase        string
	Step         string
	Tools        []string
	Outputs      []string
	Dependencies []string
}

// ResultKey is the state key the node's placeholder update writes
func (h Handler) ResultKey() string {
	return h.ID + "_result"
}

// Edge connects two nodes, or a node and a graph marker
type Edge struct {
	From string
	To   string
}

// Pipeline is everything the templates need to render a flow
type Pipeline struct {
	RunName     string
	FlowName    string
	Title       string
	Goal        string
	SpecPath    string
	StateFields []StateField
	Handlers    []Handler
	Edges       []Edge
}

// Generate builds the pipeline model for spec. It is a pure function of
// its arguments.
func Generate(spec *domain.FlowSpec, specPath string) *Pipeline {
	runName := spec.RunName
	if runName == "" {
		runName = "unknown"
	}

	p := &Pipeline{
		RunName:  runName,
		FlowName: FlowName(runName),
		Title:    titleCase(strings.ReplaceAll(runName, "-", " ")),
		Goal:     spec.Goal,
		SpecPath: specPath,
	}

	ids := make(map[string]int)
	for _, phase := range spec.Phases {
		id := identifier(strings.ToLower(phase.Name), "phase")
		ids[id]++
		if n := ids[id]; n > 1 {
			id = fmt.Sprintf("%s_%d", id, n)
		}
		step := ""
		if len(phase.Steps) > 0 {
			step = phase.Steps[0]
		}
		p.Handlers = append(p.Handlers, Handler{
			ID:           id,
			Func:         id + "_node",
			Phase:        phase.Name,
			Step:         step,
			Tools:        phase.Tools,
			Outputs:      phase.Outputs,
			Dependencies: phase.Dependencies,
		})
	}

	p.StateFields = stateFields(spec.Phases, p.Handlers)
	p.Edges = chain(p.Handlers)
	return p
}

func stateFields(phases []*domain.Phase, handlers []Handler) []StateField {
	var fields []StateField
	seen := make(map[string]bool)
	add := func(f StateField) {
		if seen[f.Name] {
			return
		}
		seen[f.Name] = true
		fields = append(fields, f)
	}

	add(StateField{Name: "task", Type: "str", Comment: "input: task description"})
	for i, phase := range phases {
		if len(phase.Outputs) == 0 {
			add(StateField{Name: handlers[i].ResultKey(), Type: "dict | None", Comment: phase.Name + " result"})
			continue
		}
		for _, out := range phase.Outputs {
			add(StateField{Name: OutputField(out), Type: "dict | None", Comment: phase.Name + " output"})
		}
	}
	add(StateField{Name: "summary", Type: "str | None", Comment: "final summary"})
	add(StateField{Name: "error", Type: "str | None", Comment: "error message"})
	return fields
}

func chain(handlers []Handler) []Edge {
	prev := Start
	edges := make([]Edge, 0, len(handlers)+1)
	for _, h := range handlers {
		edges = append(edges, Edge{From: prev, To: h.ID})
		prev = h.ID
	}
	return append(edges, Edge{From: prev, To: End})
}

// FlowName is the package directory name for a run
func FlowName(runName string) string {
	return pyName(strings.ReplaceAll(runName, "-", "_"), "flow")
}

// OutputField derives a state key from an output file name
func OutputField(output string) string {
	base := strings.TrimSuffix(output, ".json")
	return pyName(strings.ReplaceAll(base, "-", "_"), "output")
}

// identifier replaces characters not valid in a Python identifier with
// underscores
func identifier(s, fallback string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return fallback
	}
	if unicode.IsDigit([]rune(out)[0]) {
		out = "_" + out
	}
	return out
}

// pyName is identifier for names used bare in generated code, where a
// keyword gets a trailing underscore
func pyName(s, fallback string) string {
	out := identifier(s, fallback)
	if pythonKeywords[out] {
		out += "_"
	}
	return out
}

// pythonKeywords cannot be used as names in generated code
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true, "elif": true,
	"else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true,
	"while": true, "with": true, "yield": true,
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest
func titleCase(s string) string {
	var b strings.Builder
	inWord := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			inWord = true
			continue
		}
		inWord = false
		b.WriteRune(r)
	}
	return b.String()
}
