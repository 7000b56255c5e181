package tracelog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

func TestReadTrace_Missing(t *testing.T) {
	events, err := ReadTrace(OpenRun(filepath.Join(t.TempDir(), "nope")))
	if err != nil {
		t.Fatalf("missing trace should not error, got %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Errorf("events = %v, want empty non-nil", events)
	}
}

func TestReadTrace_LegacyFormat(t *testing.T) {
	dir := t.TempDir()
	content := `{"ts": "2025-01-05T09:30:00.123456", "type": "init", "message": "Run 'fetch-data-test' initialized", "data": {"run_name": "fetch-data-test"}}

{"ts": "2025-01-05T09:30:01.000001", "type": "plan", "message": "規劃數據撈取與檢查任務", "data": {"steps": ["a", "b"]}}
`
	if err := os.WriteFile(filepath.Join(dir, TraceFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	events, err := ReadTrace(OpenRun(dir))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (blank lines skipped)", len(events))
	}
	if events[1].Message != "規劃數據撈取與檢查任務" {
		t.Errorf("Message = %q", events[1].Message)
	}
	if !events[0].Timestamp.Before(events[1].Timestamp) {
		t.Error("timestamps should be ordered")
	}
}

func TestReadTrace_Malformed(t *testing.T) {
	dir := t.TempDir()
	content := `{"ts": "", "type": "init", "message": "ok", "data": {}}
{"ts": "", "type": "plan", "message": "truncated"
{"ts": "", "type": "summary", "message": "never reached", "data": {}}
`
	os.WriteFile(filepath.Join(dir, TraceFileName), []byte(content), 0644)

	events, err := ReadTrace(OpenRun(dir))
	if events != nil {
		t.Errorf("no partial result expected, got %d events", len(events))
	}

	var perr *domain.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
	if !strings.Contains(perr.Error(), TraceFileName+":2") {
		t.Errorf("error should name the file and line: %v", perr)
	}
}

func TestListRuns(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"20250101-120000-a", "20250301-080000-c", "20250201-090000-b", ".hidden"} {
		os.Mkdir(filepath.Join(root, name), 0755)
	}
	os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644)

	runs, err := ListRuns(root)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"20250301-080000-c", "20250201-090000-b", "20250101-120000-a"}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d", len(runs), len(want))
	}
	for i, name := range want {
		if runs[i].Name() != name {
			t.Errorf("runs[%d] = %q, want %q", i, runs[i].Name(), name)
		}
	}
}

func TestListRuns_MissingRoot(t *testing.T) {
	runs, err := ListRuns(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs, want 0", len(runs))
	}
}

func TestDecodeEvents_NonObjectLines(t *testing.T) {
	for _, line := range []string{"null", "[]", `"init"`, "42"} {
		events, err := DecodeEvents(strings.NewReader(line+"\n{}\n"), "trace.ndjson")

		var perr *domain.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%s: error = %v, want ParseError", line, err)
			continue
		}
		if perr.Line != 1 {
			t.Errorf("%s: Line = %d, want 1", line, perr.Line)
		}
		if events != nil {
			t.Errorf("%s: got %d events, want none", line, len(events))
		}
	}
}
