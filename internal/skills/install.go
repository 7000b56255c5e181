package skills

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// SkillFileName is the description file written for every skill
const SkillFileName = "SKILL.md"

// Metadata is the frontmatter of a SKILL.md file
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

var skillTemplate = template.Must(template.ParseFS(embeddedFS, "templates/SKILL.md.tmpl"))

// Render returns the SKILL.md content for s
func Render(s Skill) ([]byte, error) {
	front, err := yaml.Marshal(Metadata{Name: s.ID, Description: s.Description})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = skillTemplate.Execute(&buf, struct {
		Frontmatter string
		Skill       Skill
	}{string(front), s})
	if err != nil {
		return nil, fmt.Errorf("render skill %s: %w", s.ID, err)
	}
	return buf.Bytes(), nil
}

// Path returns where the SKILL.md for id lives under skillsDir
func Path(skillsDir, id string) string {
	return filepath.Join(skillsDir, id, SkillFileName)
}

// Install writes SKILL.md for every registered skill under skillsDir.
// Existing files are kept unless force is set. It returns the paths
// written.
func (r *Registry) Install(skillsDir string, force bool) ([]string, error) {
	var written []string
	for _, s := range r.List() {
		path := Path(skillsDir, s.ID)

		if _, err := os.Stat(path); err == nil && !force {
			r.env.Logger.Debugw("skill already installed", "skill", s.ID, "path", path)
			continue
		}

		content, err := Render(s)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, &domain.IOError{Op: "create directory", Path: filepath.Dir(path), Err: err}
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return written, &domain.IOError{Op: "write", Path: path, Err: err}
		}
		written = append(written, path)
	}
	return written, nil
}

// ParseMetadata reads the frontmatter of a SKILL.md file
func ParseMetadata(path string) (*Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.IOError{Op: "read", Path: path, Err: domain.ErrNotFound}
		}
		return nil, &domain.IOError{Op: "read", Path: path, Err: err}
	}

	meta, _, err := parseFrontmatter(content)
	if err != nil {
		return nil, &domain.ParseError{Path: path, Err: err}
	}
	if meta == nil {
		return nil, &domain.ParseError{Path: path, Err: errors.New("no frontmatter")}
	}
	return meta, nil
}

// parseFrontmatter splits content into frontmatter and body.
func parseFrontmatter(content []byte) (*Metadata, string, error) {
	str := string(content)

	if !strings.HasPrefix(str, "---\n") {
		return nil, str, nil
	}

	end := strings.Index(str[4:], "\n---\n")
	if end == -1 {
		return nil, str, nil // unterminated, treat as body
	}

	frontmatter := str[4 : 4+end]
	body := str[4+end+5:]

	var meta Metadata
	if err := yaml.Unmarshal([]byte(frontmatter), &meta); err != nil {
		return nil, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	return &meta, body, nil
}
