package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstall(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(Env{})

	written, err := r.Install(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 3 {
		t.Fatalf("installed %d skills, want 3", len(written))
	}

	meta, err := ParseMetadata(Path(dir, "trace-to-flow"))
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "trace-to-flow" {
		t.Errorf("Name = %q, want trace-to-flow", meta.Name)
	}
	if !strings.Contains(meta.Description, "flow spec") {
		t.Errorf("Description = %q", meta.Description)
	}
}

func TestInstall_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, "agent-trace")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("custom"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(Env{})
	written, err := r.Install(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Errorf("installed %d, want 2", len(written))
	}
	if got, _ := os.ReadFile(path); string(got) != "custom" {
		t.Errorf("existing SKILL.md overwritten: %q", got)
	}

	if _, err := r.Install(dir, true); err != nil {
		t.Fatal(err)
	}
	if got, _ := os.ReadFile(path); string(got) == "custom" {
		t.Error("force did not overwrite")
	}
}

func TestRender_Content(t *testing.T) {
	s, err := NewRegistry(Env{}).Get("spec-to-code")
	if err != nil {
		t.Fatal(err)
	}
	content, err := Render(s)
	if err != nil {
		t.Fatal(err)
	}
	out := string(content)
	for _, want := range []string{
		"---\nname: spec-to-code\n",
		"# Spec to Code",
		"- `spec` (string, required):",
		"spec-to-code generate <spec> [--dry-run] [--force]",
		"agentflow skills run spec-to-code",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SKILL.md missing %q:\n%s", want, out)
		}
	}
}

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMeta bool
		wantBody string
	}{
		{"with frontmatter", "---\nname: x\n---\nbody", true, "body"},
		{"none", "just body", false, "just body"},
		{"unterminated", "---\nname: x\nbody", false, "---\nname: x\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := parseFrontmatter([]byte(tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if (meta != nil) != tt.wantMeta {
				t.Errorf("meta = %v, wantMeta %v", meta, tt.wantMeta)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
