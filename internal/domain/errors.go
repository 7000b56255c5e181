package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a run, spec or log file is absent.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a target exists and overwriting
	// was not requested.
	ErrAlreadyExists = errors.New("already exists")
)

// ParseError reports a malformed log line or spec document
type ParseError struct {
	Path string
	Line int // 1-based; 0 when the whole document is at fault
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a filesystem read or write failure
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
