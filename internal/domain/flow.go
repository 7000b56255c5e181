package domain

import "gopkg.in/yaml.v3"

// FailureMode is an error observed while a phase ran
type FailureMode struct {
	Error   string `yaml:"error"`
	Context string `yaml:"context"`
}

// RecoveryStep records a strategy change made after a failure
type RecoveryStep struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Reason string `yaml:"reason"`
}

// Phase is one named stage of a flow spec
type Phase struct {
	Name             string         `yaml:"name"`
	Role             Role           `yaml:"role"`
	Steps            []string       `yaml:"steps"`
	Tools            []string       `yaml:"tools"`
	Outputs          []string       `yaml:"outputs"`
	Dependencies     []string       `yaml:"dependencies"`
	FailureModes     []FailureMode  `yaml:"failure_modes"`
	RecoveryPlaybook []RecoveryStep `yaml:"recovery_playbook"`
}

// NewPhase returns a phase with a single step and empty metadata lists
func NewPhase(name string, role Role, step string) *Phase {
	return &Phase{
		Name:             name,
		Role:             role,
		Steps:            []string{step},
		Tools:            []string{},
		Outputs:          []string{},
		Dependencies:     []string{},
		FailureModes:     []FailureMode{},
		RecoveryPlaybook: []RecoveryStep{},
	}
}

// Summary holds the result fields of the last summary event.
// Present is false when the trace had no summary at all, in which case
// it serializes as an empty mapping.
type Summary struct {
	Result      string
	Dataset     string
	Rows        int64
	Cols        int64
	DataQuality string
	TimeRange   string
	Present     bool
}

type summaryFields struct {
	Result      string `yaml:"result"`
	Dataset     string `yaml:"dataset"`
	Rows        int64  `yaml:"rows"`
	Cols        int64  `yaml:"cols"`
	DataQuality string `yaml:"data_quality"`
	TimeRange   string `yaml:"time_range"`
}

// MarshalYAML implements yaml.Marshaler
func (s Summary) MarshalYAML() (interface{}, error) {
	if !s.Present {
		return map[string]any{}, nil
	}
	return summaryFields{
		Result:      s.Result,
		Dataset:     s.Dataset,
		Rows:        s.Rows,
		Cols:        s.Cols,
		DataQuality: s.DataQuality,
		TimeRange:   s.TimeRange,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (s *Summary) UnmarshalYAML(node *yaml.Node) error {
	var f summaryFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	*s = Summary{
		Result:      f.Result,
		Dataset:     f.Dataset,
		Rows:        f.Rows,
		Cols:        f.Cols,
		DataQuality: f.DataQuality,
		TimeRange:   f.TimeRange,
		Present:     node.Kind == yaml.MappingNode && len(node.Content) > 0,
	}
	return nil
}

// FlowSpec is the staged workflow description derived from one run
type FlowSpec struct {
	RunName      string   `yaml:"run_name"`
	Goal         string   `yaml:"goal"`
	Phases       []*Phase `yaml:"phases"`
	FinalSummary Summary  `yaml:"final_summary"`
	Artifacts    []string `yaml:"artifacts"`
}

// PhaseByRole returns the first phase carrying role, or nil
func (f *FlowSpec) PhaseByRole(role Role) *Phase {
	for _, p := range f.Phases {
		if p.Role == role {
			return p
		}
	}
	return nil
}
