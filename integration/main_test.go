//go:build integration

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var tools = []string{"agent-trace", "trace-to-flow", "spec-to-code", "agentflow"}

// TestMain builds every tool once into a temp dir
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "agentflow-bin-")
	if err != nil {
		panic(err)
	}
	binDir = dir

	root := moduleRoot()
	for _, tool := range tools {
		cmd := exec.Command("go", "build", "-o", filepath.Join(binDir, tool), "./cmd/"+tool)
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			os.RemoveAll(binDir)
			panic("building " + tool + ": " + err.Error() + "\n" + string(out))
		}
	}

	code := m.Run()
	os.RemoveAll(binDir)
	os.Exit(code)
}
