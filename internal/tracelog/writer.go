package tracelog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// Writer creates runs under a root directory and appends events to them.
// It does no locking: one writer per run is assumed.
type Writer struct {
	root string
	now  func() time.Time
}

// NewWriter creates a Writer rooted at the given runs directory
func NewWriter(root string) *Writer {
	return &Writer{root: root, now: time.Now}
}

// WithClock replaces the writer's time source
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// InitRun creates a fresh run directory with an empty log and writes
// the init event into it
func (w *Writer) InitRun(runName string) (Run, error) {
	if err := os.MkdirAll(w.root, 0755); err != nil {
		return Run{}, &domain.IOError{Op: "create runs dir", Path: w.root, Err: err}
	}

	dirName := fmt.Sprintf("%s-%s", w.now().Format(runDirTimeFormat), SanitizeName(runName))
	run := OpenRun(filepath.Join(w.root, dirName))

	if err := os.Mkdir(run.Dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Run{}, fmt.Errorf("run %s: %w", dirName, domain.ErrAlreadyExists)
		}
		return Run{}, &domain.IOError{Op: "create run dir", Path: run.Dir, Err: err}
	}

	f, err := os.OpenFile(run.TracePath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return Run{}, &domain.IOError{Op: "create trace", Path: run.TracePath(), Err: err}
	}
	if err := f.Close(); err != nil {
		return Run{}, &domain.IOError{Op: "create trace", Path: run.TracePath(), Err: err}
	}

	message := fmt.Sprintf("Run '%s' initialized", runName)
	if _, err := w.Log(run, domain.KindInit, message, map[string]any{"run_name": runName}); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Log appends one event to the run's log. The log must already exist;
// otherwise ErrNotFound is returned and nothing is created.
func (w *Writer) Log(run Run, kind domain.EventKind, message string, data map[string]any) (domain.Event, error) {
	if data == nil {
		data = map[string]any{}
	}
	event := domain.Event{
		Timestamp: w.now(),
		Kind:      kind,
		Message:   message,
		Data:      data,
	}

	line, err := encodeLine(event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("encode event: %w", err)
	}

	// No O_CREATE: a missing log means the run was never initialized.
	f, err := os.OpenFile(run.TracePath(), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Event{}, fmt.Errorf("%s in %s: %w", TraceFileName, run.Dir, domain.ErrNotFound)
		}
		return domain.Event{}, &domain.IOError{Op: "open trace", Path: run.TracePath(), Err: err}
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return domain.Event{}, &domain.IOError{Op: "append trace", Path: run.TracePath(), Err: err}
	}
	return event, nil
}

// encodeLine renders an event as one newline-terminated JSON line
// without HTML escaping
func encodeLine(event domain.Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(event); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseData decodes the optional data argument of the log command.
// An empty string yields an empty map.
func ParseData(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, &domain.ParseError{Path: "data_json", Err: err}
	}
	if dec.More() {
		return nil, &domain.ParseError{Path: "data_json", Err: errors.New("trailing content after object")}
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
