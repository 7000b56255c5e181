package tracelog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// maxLineSize bounds a single trace line
const maxLineSize = 16 << 20

// ReadTrace returns every event of the run in file order. A missing log
// yields an empty sequence. The first malformed line fails the whole
// read with a *domain.ParseError.
func ReadTrace(run Run) ([]domain.Event, error) {
	f, err := os.Open(run.TracePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Event{}, nil
		}
		return nil, &domain.IOError{Op: "open trace", Path: run.TracePath(), Err: err}
	}
	defer f.Close()

	return DecodeEvents(f, run.TracePath())
}

// DecodeEvents parses newline-delimited events from r. Blank lines are
// skipped. path only labels errors.
func DecodeEvents(r io.Reader, path string) ([]domain.Event, error) {
	events := []domain.Event{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		event, ok, err := decodeLine(scanner.Bytes())
		if err != nil {
			return nil, &domain.ParseError{Path: path, Line: lineNo, Err: err}
		}
		if ok {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &domain.IOError{Op: "read trace", Path: path, Err: err}
	}
	return events, nil
}

var errNotObject = errors.New("event line is not a JSON object")

// decodeLine parses one line; ok is false for blank lines
func decodeLine(line []byte) (domain.Event, bool, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return domain.Event{}, false, nil
	}
	if line[0] != '{' {
		return domain.Event{}, false, errNotObject
	}
	var event domain.Event
	if err := json.Unmarshal(line, &event); err != nil {
		return domain.Event{}, false, err
	}
	return event, true, nil
}
