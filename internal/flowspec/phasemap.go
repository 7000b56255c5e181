package flowspec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hochfrequenz/agentflow/internal/domain"
	"github.com/hochfrequenz/agentflow/internal/tracelog"
)

// PhaseMapFileName is picked up from a run directory when no explicit
// phase map is given
const PhaseMapFileName = "phases.yaml"

// PhaseEntry names the phase built from one plan step
type PhaseEntry struct {
	Name string      `yaml:"name"`
	Role domain.Role `yaml:"role"`
}

// PhaseMap assigns names and roles to plan steps by position
type PhaseMap []PhaseEntry

// DefaultPhaseMap is used for steps the declared map does not cover
var DefaultPhaseMap = PhaseMap{
	{Name: "Understand", Role: domain.RoleDiscovery},
	{Name: "Fetch", Role: domain.RoleIngestion},
	{Name: "Profile", Role: domain.RoleProfiling},
	{Name: "QualityCheck", Role: domain.RoleValidation},
	{Name: "Summarize", Role: domain.RoleReporting},
}

// Entry returns the name and role for step i
func (m PhaseMap) Entry(i int) PhaseEntry {
	if i < len(m) && m[i].Name != "" {
		e := m[i]
		if e.Role == "" {
			e.Role = domain.RoleGeneral
		}
		return e
	}
	if i < len(DefaultPhaseMap) {
		return DefaultPhaseMap[i]
	}
	return PhaseEntry{Name: fmt.Sprintf("Phase%d", i+1), Role: domain.RoleGeneral}
}

// roleForName infers the role of a phase loaded without one
func roleForName(name string) domain.Role {
	for _, e := range DefaultPhaseMap {
		if e.Name == name {
			return e.Role
		}
	}
	return domain.RoleGeneral
}

// LoadPhaseMap reads a YAML list of {name, role} entries
func LoadPhaseMap(path string) (PhaseMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("phase map %s: %w", path, domain.ErrNotFound)
		}
		return nil, &domain.IOError{Op: "read phase map", Path: path, Err: err}
	}

	var m PhaseMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &domain.ParseError{Path: path, Err: err}
	}
	for i := range m {
		m[i].Role = domain.ParseRole(string(m[i].Role))
	}
	return m, nil
}

// RunPhaseMap loads the phase map stored next to a run's trace, if any.
// It returns nil without error when the run has none.
func RunPhaseMap(run tracelog.Run) (PhaseMap, error) {
	m, err := LoadPhaseMap(filepath.Join(run.Dir, PhaseMapFileName))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return m, err
}
