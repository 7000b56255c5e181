// Package resolve maps user-supplied identifiers to run directories and
// spec files.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hochfrequenz/agentflow/internal/domain"
	"github.com/hochfrequenz/agentflow/internal/tracelog"
)

// specExts are searched in this order
var specExts = []string{".yaml", ".yml"}

// AmbiguousError is returned when an identifier matches several
// candidates and none of them exactly
type AmbiguousError struct {
	Identifier string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q is ambiguous, matches: %s", e.Identifier, strings.Join(e.Candidates, ", "))
}

// FindSpec returns identifier itself if it names an existing file,
// otherwise the first spec in specsDir whose stem contains identifier.
// All *.yaml files are tried before *.yml, each in sorted order.
func FindSpec(identifier, specsDir string) (string, error) {
	if isFile(identifier) {
		return identifier, nil
	}
	candidates, err := SpecCandidates(identifier, specsDir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", notFound("spec", identifier)
	}
	return candidates[0], nil
}

// SpecCandidates lists every spec path whose stem contains identifier,
// in the order FindSpec considers them
func SpecCandidates(identifier, specsDir string) ([]string, error) {
	var matches []string
	for _, ext := range specExts {
		files, err := specFiles(specsDir, ext)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if strings.Contains(stem(f), identifier) {
				matches = append(matches, f)
			}
		}
	}
	return matches, nil
}

// ResolveSpec accepts an existing path or an exact spec id (the file
// stem, with or without the .flow_spec suffix). Anything else must match
// exactly one spec by substring.
func ResolveSpec(identifier, specsDir string) (string, error) {
	if isFile(identifier) {
		return identifier, nil
	}
	for _, ext := range specExts {
		for _, name := range []string{identifier + ".flow_spec" + ext, identifier + ext} {
			if p := filepath.Join(specsDir, name); isFile(p) {
				return p, nil
			}
		}
	}
	candidates, err := SpecCandidates(identifier, specsDir)
	if err != nil {
		return "", err
	}
	return pick(identifier, "spec", candidates)
}

// ListSpecs returns the sorted stems of every spec in specsDir
func ListSpecs(specsDir string) ([]string, error) {
	var names []string
	for _, ext := range specExts {
		files, err := specFiles(specsDir, ext)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			names = append(names, stem(f))
		}
	}
	sort.Strings(names)
	return names, nil
}

// FindRun returns <runsDir>/<identifier> or identifier itself when either
// is a directory, otherwise the most recent run whose name contains it
func FindRun(identifier, runsDir string) (string, error) {
	if dir, ok := directRun(identifier, runsDir); ok {
		return dir, nil
	}
	candidates, err := RunCandidates(identifier, runsDir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", notFound("run", identifier)
	}
	return candidates[0], nil
}

// RunCandidates lists run directories whose name contains identifier,
// most recent first
func RunCandidates(identifier, runsDir string) ([]string, error) {
	runs, err := tracelog.ListRuns(runsDir)
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, r := range runs {
		if strings.Contains(r.Name(), identifier) {
			matches = append(matches, r.Dir)
		}
	}
	return matches, nil
}

// ResolveRun is the exact-id counterpart of FindRun: a direct match wins,
// otherwise exactly one run must contain identifier
func ResolveRun(identifier, runsDir string) (string, error) {
	if dir, ok := directRun(identifier, runsDir); ok {
		return dir, nil
	}
	candidates, err := RunCandidates(identifier, runsDir)
	if err != nil {
		return "", err
	}
	return pick(identifier, "run", candidates)
}

func directRun(identifier, runsDir string) (string, bool) {
	if identifier == "" {
		return "", false
	}
	if p := filepath.Join(runsDir, identifier); isDir(p) {
		return p, true
	}
	if isDir(identifier) {
		return identifier, true
	}
	return "", false
}

func pick(identifier, what string, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", notFound(what, identifier)
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousError{Identifier: identifier, Candidates: candidates}
	}
}

func notFound(what, identifier string) error {
	return fmt.Errorf("%s %q: %w", what, identifier, domain.ErrNotFound)
}

func specFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.IOError{Op: "list specs", Path: dir, Err: err}
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
