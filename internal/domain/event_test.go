package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestEventKind_Known(t *testing.T) {
	tests := []struct {
		kind EventKind
		want bool
	}{
		{KindInit, true},
		{KindStrategyShift, true},
		{KindSummary, true},
		{"custom", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.kind.Known(); got != tt.want {
			t.Errorf("%q.Known() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if got := ParseRole("ingestion"); got != RoleIngestion {
		t.Errorf("ParseRole(ingestion) = %q", got)
	}
	if got := ParseRole("whatever"); got != RoleGeneral {
		t.Errorf("ParseRole(whatever) = %q, want general", got)
	}
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 4, 10, 11, 12, 345678000, time.FixedZone("CET", 3600))
	ev := Event{
		Timestamp: ts,
		Kind:      KindToolResult,
		Message:   "讀取 <data> & profile",
		Data: map[string]any{
			"success":     true,
			"output_file": "x.json",
			"rows":        json.Number("12345678901234567"),
		},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		t.Fatal(err)
	}
	line := buf.String()
	if !strings.Contains(line, "讀取 <data> & profile") {
		t.Errorf("message should be written verbatim, got %s", line)
	}
	if !strings.Contains(line, `"ts":"2025-03-04T10:11:12.345678+01:00"`) {
		t.Errorf("unexpected ts encoding: %s", line)
	}

	var got Event
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
	if got.Kind != ev.Kind || got.Message != ev.Message {
		t.Errorf("got %+v, want %+v", got, ev)
	}
	if got.Data["rows"] != json.Number("12345678901234567") {
		t.Errorf("rows = %#v, want exact json.Number", got.Data["rows"])
	}
}

func TestEvent_NilDataWritesObject(t *testing.T) {
	b, err := json.Marshal(Event{Kind: KindPlan})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"data":{}`) {
		t.Errorf("expected empty data object, got %s", b)
	}

	var ev Event
	if err := json.Unmarshal([]byte(`{"ts":"","type":"plan","message":"m","data":null}`), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Data == nil {
		t.Error("Data should be an empty map after decoding null")
	}
}

func TestParseTimestamp(t *testing.T) {
	legacy, err := ParseTimestamp("2024-01-02T15:04:05.123456")
	if err != nil {
		t.Fatal(err)
	}
	if legacy.Location() != time.Local {
		t.Errorf("legacy timestamps should be local, got %v", legacy.Location())
	}
	if legacy.Nanosecond() != 123456000 {
		t.Errorf("Nanosecond = %d, want 123456000", legacy.Nanosecond())
	}

	if _, err := ParseTimestamp("2024-01-02T15:04:05Z"); err != nil {
		t.Errorf("RFC 3339 should parse: %v", err)
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for garbage timestamp")
	}
}

func TestSummary_YAML(t *testing.T) {
	out, err := yaml.Marshal(FlowSpec{RunName: "r"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "final_summary: {}") {
		t.Errorf("absent summary should be {}, got:\n%s", out)
	}

	out, err = yaml.Marshal(FlowSpec{FinalSummary: Summary{Result: "ok", Rows: 5, Present: true}})
	if err != nil {
		t.Fatal(err)
	}
	var back FlowSpec
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if !back.FinalSummary.Present || back.FinalSummary.Rows != 5 || back.FinalSummary.Result != "ok" {
		t.Errorf("FinalSummary = %+v", back.FinalSummary)
	}
}

func TestFlowSpec_PhaseByRole(t *testing.T) {
	spec := FlowSpec{Phases: []*Phase{
		NewPhase("Look", RoleDiscovery, "s0"),
		NewPhase("Pull", RoleIngestion, "s1"),
		NewPhase("Pull again", RoleIngestion, "s2"),
	}}

	p := spec.PhaseByRole(RoleIngestion)
	if p == nil || p.Name != "Pull" {
		t.Errorf("PhaseByRole(ingestion) = %+v, want Pull", p)
	}
	if spec.PhaseByRole(RoleReporting) != nil {
		t.Error("expected nil for missing role")
	}
}
