// Package tracelog writes and reads the append-only trace log of a run.
//
// A run is a directory holding exactly one trace.ndjson file. Each line
// of that file is one JSON event record, in append order.
package tracelog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// TraceFileName is the log file inside every run directory
const TraceFileName = "trace.ndjson"

// runDirTimeFormat prefixes run directory names so that name order is
// creation order
const runDirTimeFormat = "20060102-150405"

// Run is a handle to a run directory
type Run struct {
	Dir string
}

// OpenRun returns a handle for an existing or prospective run directory.
// It does not touch the filesystem.
func OpenRun(dir string) Run {
	return Run{Dir: dir}
}

// Name returns the run directory's base name
func (r Run) Name() string {
	return filepath.Base(r.Dir)
}

// TracePath returns the path of the run's log file
func (r Run) TracePath() string {
	return filepath.Join(r.Dir, TraceFileName)
}

// HasTrace reports whether the run's log file exists
func (r Run) HasTrace() bool {
	info, err := os.Stat(r.TracePath())
	return err == nil && !info.IsDir()
}

// SanitizeName keeps letters, digits, '-' and '_' and replaces every
// other character with '_'
func SanitizeName(name string) string {
	var b strings.Builder
	for _, c := range name {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '-' || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ListRuns returns the run directories under root, most recent first.
// A missing root yields no runs. Log contents are not inspected.
func ListRuns(root string) ([]Run, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.IOError{Op: "list runs", Path: root, Err: err}
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	runs := make([]Run, 0, len(names))
	for _, name := range names {
		runs = append(runs, OpenRun(filepath.Join(root, name)))
	}
	return runs, nil
}
