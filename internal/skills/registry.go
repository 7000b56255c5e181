// Package skills is the static registry of pipeline capabilities that
// agents can invoke, and installs their SKILL.md descriptions.
package skills

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// ErrInvalidInput is returned when skill input is missing a required
// field or has the wrong type
var ErrInvalidInput = errors.New("invalid input")

// Param describes one field of a skill's JSON input
type Param struct {
	Name        string
	Type        string // string, boolean or object
	Required    bool
	Description string
}

// Env carries the directories and logger skills operate on
type Env struct {
	ProjectRoot  string
	RunsDir      string
	SpecsDir     string
	FlowsDir     string
	TemplatesDir string
	Logger       *zap.SugaredLogger
}

// InvokeFunc runs a skill against validated input
type InvokeFunc func(ctx context.Context, env Env, input map[string]any) (map[string]any, error)

// Skill is one registered capability
type Skill struct {
	ID          string
	Name        string
	Description string
	Input       []Param
	Usage       []string
	Invoke      InvokeFunc
}

// Registry resolves skills by id
type Registry struct {
	env    Env
	skills map[string]Skill
}

// NewRegistry returns a registry holding every built-in skill
func NewRegistry(env Env) *Registry {
	if env.Logger == nil {
		env.Logger = zap.NewNop().Sugar()
	}
	r := &Registry{env: env, skills: make(map[string]Skill)}
	for _, s := range builtin() {
		r.skills[s.ID] = s
	}
	return r
}

// Get returns the skill registered under id
func (r *Registry) Get(id string) (Skill, error) {
	s, ok := r.skills[id]
	if !ok {
		return Skill{}, fmt.Errorf("skill %q: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// List returns all skills sorted by id
func (r *Registry) List() []Skill {
	out := make([]Skill, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Invoke validates raw JSON input against the skill's parameters and runs it
func (r *Registry) Invoke(ctx context.Context, id string, raw []byte) (map[string]any, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	input := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&input); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", id, ErrInvalidInput, err)
		}
		if input == nil {
			input = map[string]any{}
		}
	}
	if err := validate(s.Input, input); err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}

	r.env.Logger.Debugw("invoking skill", "skill", id)
	return s.Invoke(ctx, r.env, input)
}

func validate(params []Param, input map[string]any) error {
	for _, p := range params {
		v, ok := input[p.Name]
		if !ok || v == nil {
			if p.Required {
				return fmt.Errorf("%w: %s is required", ErrInvalidInput, p.Name)
			}
			continue
		}
		var valid bool
		switch p.Type {
		case "string":
			_, valid = v.(string)
		case "boolean":
			_, valid = v.(bool)
		case "object":
			_, valid = v.(map[string]any)
		default:
			valid = true
		}
		if !valid {
			return fmt.Errorf("%w: %s must be a %s", ErrInvalidInput, p.Name, p.Type)
		}
	}
	return nil
}

func str(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}

func boolean(input map[string]any, key string) bool {
	b, _ := input[key].(bool)
	return b
}
