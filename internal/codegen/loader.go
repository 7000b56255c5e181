package codegen

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"text/template"
)

// Loader manages code templates with override support.
type Loader struct {
	overrideDirs []string // checked in priority order
	cache        map[string]*template.Template
	mu           sync.RWMutex
}

// NewLoader creates a loader with the given override directories.
// Directories are checked in order; first match wins.
func NewLoader(overrideDirs ...string) *Loader {
	return &Loader{
		overrideDirs: overrideDirs,
		cache:        make(map[string]*template.Template),
	}
}

// DefaultLoader creates a loader with standard override paths:
// 1. Configured templates_dir, if set
// 2. Project-local: .agentflow/templates/
// 3. User config: ~/.config/agentflow/templates/
func DefaultLoader(projectRoot, templatesDir string) *Loader {
	dirs := []string{}
	if templatesDir != "" {
		dirs = append(dirs, templatesDir)
	}
	if projectRoot != "" {
		dirs = append(dirs, filepath.Join(projectRoot, ".agentflow", "templates"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "agentflow", "templates"))
	}
	return NewLoader(dirs...)
}

// loadContent loads raw content from override dirs or the embedded FS.
func (l *Loader) loadContent(name string) ([]byte, error) {
	for _, dir := range l.overrideDirs {
		if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
			return data, nil
		}
	}
	return fs.ReadFile(embeddedFS, path.Join("templates", name))
}

// LoadTemplate loads and parses a template by name (e.g. "graph.py.tmpl").
func (l *Loader) LoadTemplate(name string) (*template.Template, error) {
	l.mu.RLock()
	if tmpl, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return tmpl, nil
	}
	l.mu.RUnlock()

	content, err := l.loadContent(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("compile template %s: %w", name, err)
	}

	l.mu.Lock()
	l.cache[name] = tmpl
	l.mu.Unlock()

	return tmpl, nil
}

// Execute loads and executes a template with the given data.
func (l *Loader) Execute(name string, data interface{}) ([]byte, error) {
	tmpl, err := l.LoadTemplate(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
