package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// legacyTimestamp is the offset-less ISO form written by older trace writers
const legacyTimestamp = "2006-01-02T15:04:05"

// Event is one line of a run's trace log
type Event struct {
	Timestamp time.Time
	Kind      EventKind
	Message   string
	Data      map[string]any
}

type wireEvent struct {
	TS      string         `json:"ts"`
	Type    EventKind      `json:"type"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// MarshalJSON writes the {ts, type, message, data} wire form.
// Data is always an object, never null.
func (e Event) MarshalJSON() ([]byte, error) {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wireEvent{
		TS:      e.Timestamp.Format(time.RFC3339Nano),
		Type:    e.Kind,
		Message: e.Message,
		Data:    data,
	}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON reads the wire form. Numbers inside data are kept as
// json.Number so no precision is lost.
func (e *Event) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var w wireEvent
	if err := dec.Decode(&w); err != nil {
		return err
	}

	ts, err := ParseTimestamp(w.TS)
	if err != nil {
		return err
	}

	e.Timestamp = ts
	e.Kind = w.Type
	e.Message = w.Message
	e.Data = w.Data
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	return nil
}

// ParseTimestamp accepts RFC 3339 and the legacy offset-less form
// (interpreted in local time). An empty string yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimestamp, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}

// Get returns a data field, or nil if absent
func (e Event) Get(key string) any {
	if e.Data == nil {
		return nil
	}
	return e.Data[key]
}

// Has reports whether a data field is present, even with a null value
func (e Event) Has(key string) bool {
	_, ok := e.Data[key]
	return ok
}
