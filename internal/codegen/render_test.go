package codegen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender_Files(t *testing.T) {
	files, err := NewLoader().Render(Generate(twoPhaseSpec(), "specs/my-run.flow_spec.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "__init__.py,graph.py,run.py" {
		t.Fatalf("files = %v", names)
	}

	graph := string(files[1].Content)
	for _, want := range []string{
		"class FlowState(TypedDict):",
		"    task: str",
		"    a_result: dict | None",
		"def a_node(state: FlowState) -> dict:",
		`    return {"b_result": {"status": "done"}}`,
		`    builder.add_node("a", a_node)`,
		`    builder.add_edge(START, "a")`,
		`    builder.add_edge("a", "b")`,
		`    builder.add_edge("b", END)`,
		"1. A - first",
		"My Run Flow - LangGraph Implementation",
	} {
		if !strings.Contains(graph, want) {
			t.Errorf("graph.py missing %q:\n%s", want, graph)
		}
	}

	run := string(files[2].Content)
	if !strings.Contains(run, "from flows.my_run.graph import graph") {
		t.Errorf("run.py missing import:\n%s", run)
	}
	if !strings.Contains(run, `default="do things",`) {
		t.Errorf("run.py missing task default:\n%s", run)
	}
}

func TestRender_Deterministic(t *testing.T) {
	a, err := NewLoader().Render(Generate(twoPhaseSpec(), "s.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewLoader().Render(Generate(twoPhaseSpec(), "s.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if !bytes.Equal(a[i].Content, b[i].Content) {
			t.Errorf("%s differs between renders", a[i].Name)
		}
	}
	if ContentHash(a) != ContentHash(b) {
		t.Error("ContentHash differs between renders")
	}
}

func TestRender_CommentsForMetadata(t *testing.T) {
	spec := twoPhaseSpec()
	spec.Phases[1].Tools = []string{"python"}
	spec.Phases[1].Outputs = []string{"x.json"}
	spec.Phases[1].Dependencies = []string{"pandas"}

	files, err := NewLoader().Render(Generate(spec, ""))
	if err != nil {
		t.Fatal(err)
	}
	graph := string(files[1].Content)
	for _, want := range []string{"# Tools: python", "# Outputs: x.json", "# Dependencies: pandas", "    x: dict | None"} {
		if !strings.Contains(graph, want) {
			t.Errorf("graph.py missing %q", want)
		}
	}
}

func TestRender_QuotesUserText(t *testing.T) {
	spec := twoPhaseSpec()
	spec.Goal = `say "hi" """ now`
	files, err := NewLoader().Render(Generate(spec, ""))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(files[2].Content), `default="say \"hi\" \"\"\" now",`) {
		t.Errorf("goal not quoted:\n%s", files[2].Content)
	}
	if strings.Contains(string(files[1].Content), `Goal: say "hi" """`) {
		t.Error("triple quote not escaped in docstring")
	}
}

func TestLoader_Override(t *testing.T) {
	dir := t.TempDir()
	custom := "# custom init for {{.FlowName}}\n"
	if err := os.WriteFile(filepath.Join(dir, "__init__.py.tmpl"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := NewLoader(dir).Render(Generate(twoPhaseSpec(), ""))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(files[0].Content); got != "# custom init for my_run\n" {
		t.Errorf("__init__.py = %q", got)
	}
	// templates without an override still come from the embedded set
	if !strings.Contains(string(files[1].Content), "StateGraph") {
		t.Error("graph.py not rendered from embedded template")
	}
}

func TestLoader_BadOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "run.py.tmpl"), []byte("{{.Nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(dir).Render(Generate(twoPhaseSpec(), "")); err == nil {
		t.Error("expected compile error")
	}
}
