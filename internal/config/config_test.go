package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Default()

	if cfg.Paths.RunsDir != "runs" {
		t.Errorf("RunsDir = %q, want runs", cfg.Paths.RunsDir)
	}
	if !cfg.Catalog.Enabled {
		t.Error("catalog should be enabled by default")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(cfg.Paths.SpecsDir) != "specs" || !filepath.IsAbs(cfg.Paths.SpecsDir) {
		t.Errorf("SpecsDir = %q, want absolute .../specs", cfg.Paths.SpecsDir)
	}
}

func TestLoad_FromFile(t *testing.T) {
	content := `
[paths]
project_root = "/test/project"
runs_dir = "traces"
flows_dir = "/abs/flows"

[log]
level = "debug"
`
	cfg, err := Load(writeTempConfig(t, content))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Paths.ProjectRoot != "/test/project" {
		t.Errorf("ProjectRoot = %q, want /test/project", cfg.Paths.ProjectRoot)
	}
	if cfg.Paths.RunsDir != "/test/project/traces" {
		t.Errorf("RunsDir = %q, want /test/project/traces", cfg.Paths.RunsDir)
	}
	if cfg.Paths.FlowsDir != "/abs/flows" {
		t.Errorf("FlowsDir = %q, want /abs/flows", cfg.Paths.FlowsDir)
	}
	if cfg.Paths.SpecsDir != "/test/project/specs" {
		t.Errorf("SpecsDir = %q, want default under project root", cfg.Paths.SpecsDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Catalog.Path != "/test/project/.agentflow/catalog.db" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
}

func TestLoad_Malformed(t *testing.T) {
	if _, err := Load(writeTempConfig(t, "[paths\nruns_dir = 1")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
[paths]
project_root = "/test/project"
runs_dir = "from-file"

[catalog]
enabled = true
`
	t.Setenv("AGENTFLOW_RUNS_DIR", "/env/runs")
	t.Setenv("AGENTFLOW_CATALOG_ENABLED", "false")
	t.Setenv("AGENTFLOW_LOG_FORMAT", "json")

	cfg, err := Load(writeTempConfig(t, content))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.RunsDir != "/env/runs" {
		t.Errorf("RunsDir = %q, want /env/runs", cfg.Paths.RunsDir)
	}
	if cfg.Catalog.Enabled {
		t.Error("Catalog.Enabled = true, want env override false")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Paths.ProjectRoot != "/test/project" {
		t.Errorf("ProjectRoot = %q, want file value", cfg.Paths.ProjectRoot)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := ExpandPath(tt.input)
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindLocalConfig(t *testing.T) {
	root := t.TempDir()
	subdir := filepath.Join(root, "sub", "dir")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatal(err)
	}

	localConfig := filepath.Join(root, LocalConfigName)
	if err := os.WriteFile(localConfig, []byte("[paths]\nproject_root = \"/local\""), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	if err := os.Chdir(subdir); err != nil {
		t.Fatal(err)
	}

	found := FindLocalConfig()
	if found != localConfig {
		t.Errorf("FindLocalConfig() = %q, want %q", found, localConfig)
	}
}

func TestFindLocalConfig_NotFound(t *testing.T) {
	root := t.TempDir()

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}

	found := FindLocalConfig()
	if found != "" {
		t.Errorf("FindLocalConfig() = %q, want empty string", found)
	}
}

func TestLoadWithLocalFallback_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	explicitPath := filepath.Join(dir, "explicit.toml")

	content := `[paths]
project_root = "/explicit"
`
	if err := os.WriteFile(explicitPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithLocalFallback(explicitPath)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Paths.ProjectRoot != "/explicit" {
		t.Errorf("ProjectRoot = %q, want /explicit", cfg.Paths.ProjectRoot)
	}
}

func TestLoadWithLocalFallback_LocalConfig(t *testing.T) {
	root := t.TempDir()
	localConfig := filepath.Join(root, LocalConfigName)

	content := `[paths]
specs_dir = "my-specs"
`
	if err := os.WriteFile(localConfig, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithLocalFallback("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Paths.ProjectRoot != root {
		t.Errorf("ProjectRoot = %q, want %q", cfg.Paths.ProjectRoot, root)
	}
	if want := filepath.Join(root, "my-specs"); cfg.Paths.SpecsDir != want {
		t.Errorf("SpecsDir = %q, want %q", cfg.Paths.SpecsDir, want)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".github"), 0755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}

	if got := FindProjectRoot(deep); got != root {
		t.Errorf("FindProjectRoot = %q, want %q", got, root)
	}

	bare := t.TempDir()
	if got := FindProjectRoot(bare); got != bare {
		t.Errorf("FindProjectRoot(no .github) = %q, want %q", got, bare)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("AGENTFLOW_TEST_DOTENV=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("AGENTFLOW_TEST_DOTENV") })

	if err := LoadDotEnv(dir); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("AGENTFLOW_TEST_DOTENV"); got != "loaded" {
		t.Errorf("AGENTFLOW_TEST_DOTENV = %q, want loaded", got)
	}

	if err := LoadDotEnv(t.TempDir()); err != nil {
		t.Errorf("missing .env: %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Paths.ProjectRoot = "/saved"
	cfg.Log.Format = "json"

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Paths.ProjectRoot != "/saved" || loaded.Log.Format != "json" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
