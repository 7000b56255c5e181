package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hochfrequenz/agentflow/internal/config"
	"github.com/hochfrequenz/agentflow/internal/domain"
	"github.com/hochfrequenz/agentflow/internal/logging"
	"github.com/hochfrequenz/agentflow/internal/resolve"
)

func testApp(t *testing.T) *App {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ProjectRoot = root
	cfg.Paths.RunsDir = filepath.Join(root, "runs")
	cfg.Paths.SpecsDir = filepath.Join(root, "specs")
	cfg.Paths.FlowsDir = filepath.Join(root, "flows")
	cfg.Catalog.Path = filepath.Join(root, ".agentflow", "catalog.db")
	return &App{
		Config: cfg,
		Logger: logging.Nop(),
		Stdin:  strings.NewReader(""),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
}

func writeSpecs(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("run_name: x\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolveSpec_NonInteractiveAmbiguous(t *testing.T) {
	a := testApp(t)
	writeSpecs(t, a.Config.Paths.SpecsDir, "foo-bar.yaml", "zzz-foo.yaml")

	_, err := a.ResolveSpec("foo", false)
	var amb *resolve.AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("err = %v, want *AmbiguousError", err)
	}
	if !strings.Contains(err.Error(), "--first") {
		t.Errorf("error does not mention --first: %v", err)
	}

	got, err := a.ResolveSpec("foo", true)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "foo-bar.yaml" {
		t.Errorf("--first picked %q, want foo-bar.yaml", got)
	}
}

func TestResolveRun_NotFound(t *testing.T) {
	a := testApp(t)
	if _, err := a.ResolveRun("nothing", false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCatalog(t *testing.T) {
	a := testApp(t)
	store := a.Catalog()
	if store == nil {
		t.Fatal("catalog not opened")
	}
	store.Close()

	a.Config.Catalog.Enabled = false
	if a.Catalog() != nil {
		t.Error("disabled catalog opened")
	}
}

func TestSkillEnv(t *testing.T) {
	a := testApp(t)
	env := a.SkillEnv()
	if env.RunsDir != a.Config.Paths.RunsDir || env.Logger == nil {
		t.Errorf("SkillEnv = %+v", env)
	}
}
