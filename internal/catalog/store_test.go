package catalog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndListConversions(t *testing.T) {
	store := newStore(t)
	base := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		c := &Conversion{
			RunDir:      "runs/" + name,
			RunName:     name,
			SpecPath:    "specs/" + name + ".flow_spec.yaml",
			PhaseCount:  i + 1,
			EventCount:  10 * (i + 1),
			ConvertedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.RecordConversion(c); err != nil {
			t.Fatal(err)
		}
		if c.ID == "" {
			t.Error("ID not assigned")
		}
	}

	got, err := store.ListConversions(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].RunName != "third" || got[1].RunName != "second" {
		t.Errorf("order = %s, %s; want third, second", got[0].RunName, got[1].RunName)
	}
	if got[0].PhaseCount != 3 || got[0].EventCount != 30 {
		t.Errorf("counts = %d/%d, want 3/30", got[0].PhaseCount, got[0].EventCount)
	}
	if !got[0].ConvertedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("ConvertedAt = %v", got[0].ConvertedAt)
	}

	all, err := store.ListConversions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestStore_LastGeneration(t *testing.T) {
	store := newStore(t)

	if _, err := store.LastGeneration("flows/demo"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	base := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	for i, hash := range []string{"aaa", "bbb"} {
		g := &Generation{
			SpecPath:    "specs/demo.flow_spec.yaml",
			FlowDir:     "flows/demo",
			ContentHash: hash,
			FileCount:   3,
			GeneratedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.RecordGeneration(g); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.RecordGeneration(&Generation{FlowDir: "flows/other", ContentHash: "ccc"}); err != nil {
		t.Fatal(err)
	}

	last, err := store.LastGeneration("flows/demo")
	if err != nil {
		t.Fatal(err)
	}
	if last.ContentHash != "bbb" {
		t.Errorf("ContentHash = %q, want bbb", last.ContentHash)
	}

	all, err := store.ListGenerations(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("len = %d, want 3", len(all))
	}
}

func TestStore_FileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	store, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.RecordConversion(&Conversion{RunDir: "r", RunName: "r", SpecPath: "s"}); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.ListConversions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}
