//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// binDir holds the tools built by TestMain
var binDir string

func moduleRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Dir(filepath.Dir(filename))
}

// FixturesDir returns the path to the fixtures directory
func FixturesDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(moduleRoot(), "integration", "fixtures")
}

// Project is a throwaway project directory the tools run in
type Project struct {
	t    *testing.T
	Root string
	home string
}

// NewProject creates an empty project with a local .agentflow.toml so
// that neither the user's config nor the working tree leaks in
func NewProject(t *testing.T) *Project {
	t.Helper()
	root := t.TempDir()
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".agentflow.toml"), []byte("[log]\nlevel = \"warn\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &Project{t: t, Root: root, home: home}
}

// Result is the outcome of one tool invocation
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Run executes tool with args inside the project
func (p *Project) Run(tool string, args ...string) Result {
	p.t.Helper()
	return p.RunInput("", tool, args...)
}

// RunInput is Run with stdin set to input
func (p *Project) RunInput(input, tool string, args ...string) Result {
	p.t.Helper()
	cmd := exec.Command(filepath.Join(binDir, tool), args...)
	cmd.Dir = p.Root
	cmd.Stdin = strings.NewReader(input)
	cmd.Env = append(cleanEnv(), "HOME="+p.home, "NO_COLOR=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// MustRun fails the test if the tool exits non-zero
func (p *Project) MustRun(tool string, args ...string) Result {
	p.t.Helper()
	res := p.Run(tool, args...)
	if res.Err != nil {
		p.t.Fatalf("%s %s: %v\nstdout:\n%s\nstderr:\n%s", tool, strings.Join(args, " "), res.Err, res.Stdout, res.Stderr)
	}
	return res
}

// CopyFixture copies fixtures/<name> to <root>/<dst>
func (p *Project) CopyFixture(name, dst string) string {
	p.t.Helper()
	target := filepath.Join(p.Root, dst)
	if err := copyDir(filepath.Join(FixturesDir(p.t), name), target); err != nil {
		p.t.Fatalf("copy fixture %s: %v", name, err)
	}
	return target
}

func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "AGENTFLOW_") || strings.HasPrefix(kv, "HOME=") {
			continue
		}
		env = append(env, kv)
	}
	return env
}

// copyDir recursively copies a directory
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		targetPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(targetPath, 0755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(targetPath, data, 0644)
	})
}
