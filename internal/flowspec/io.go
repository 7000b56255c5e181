package flowspec

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// SpecSuffix is appended to the run name to form a spec file name
const SpecSuffix = ".flow_spec.yaml"

// DefaultSpecPath returns where the spec for runName is stored. Path
// separators in runName are replaced so the file stays inside specsDir.
func DefaultSpecPath(specsDir, runName string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, runName)
	if name == "" {
		name = DefaultRunName
	}
	return filepath.Join(specsDir, name+SpecSuffix)
}

// Marshal renders spec as YAML with two-space indentation
func Marshal(spec *domain.FlowSpec) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return nil, fmt.Errorf("encoding flow spec: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding flow spec: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a flow spec document
func Unmarshal(data []byte) (*domain.FlowSpec, error) {
	return unmarshal(data, "<input>")
}

func unmarshal(data []byte, path string) (*domain.FlowSpec, error) {
	var spec domain.FlowSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, &domain.ParseError{Path: path, Err: err}
	}
	normalize(&spec)
	return &spec, nil
}

// normalize fills defaults for documents written by hand or by older
// tools, which may omit roles and empty lists
func normalize(spec *domain.FlowSpec) {
	if spec.RunName == "" {
		spec.RunName = DefaultRunName
	}
	if spec.Artifacts == nil {
		spec.Artifacts = []string{}
	}
	phases := spec.Phases[:0]
	for _, p := range spec.Phases {
		if p == nil {
			continue
		}
		if p.Role == "" {
			p.Role = roleForName(p.Name)
		} else {
			p.Role = domain.ParseRole(string(p.Role))
		}
		if p.Steps == nil {
			p.Steps = []string{}
		}
		if p.Tools == nil {
			p.Tools = []string{}
		}
		if p.Outputs == nil {
			p.Outputs = []string{}
		}
		if p.Dependencies == nil {
			p.Dependencies = []string{}
		}
		if p.FailureModes == nil {
			p.FailureModes = []domain.FailureMode{}
		}
		if p.RecoveryPlaybook == nil {
			p.RecoveryPlaybook = []domain.RecoveryStep{}
		}
		phases = append(phases, p)
	}
	if phases == nil {
		phases = []*domain.Phase{}
	}
	spec.Phases = phases
}

// Load reads and parses the spec at path
func Load(path string) (*domain.FlowSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.IOError{Op: "read spec", Path: path, Err: domain.ErrNotFound}
		}
		return nil, &domain.IOError{Op: "read spec", Path: path, Err: err}
	}
	return unmarshal(data, path)
}

// Save writes spec to path through a temporary file in the same
// directory, so readers never observe a partial document
func Save(path string, spec *domain.FlowSpec) error {
	data, err := Marshal(spec)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &domain.IOError{Op: "create directory", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".flow_spec-*.tmp")
	if err != nil {
		return &domain.IOError{Op: "create temp file", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &domain.IOError{Op: "chmod", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &domain.IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
