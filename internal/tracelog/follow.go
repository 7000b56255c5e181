package tracelog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// ErrStopFollowing can be returned by a follow callback to end Follow
// without an error
var ErrStopFollowing = errors.New("stop following")

// EventFunc receives events in log order
type EventFunc func(domain.Event) error

// Follower tails a run's log, delivering existing events first and then
// every complete line appended afterwards
type Follower struct {
	run    Run
	logger *zap.SugaredLogger

	// Poll picks up appends that the watcher missed
	poll time.Duration
}

// NewFollower creates a follower for run
func NewFollower(run Run, logger *zap.SugaredLogger) *Follower {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Follower{
		run:    run,
		logger: logger,
		poll:   time.Second,
	}
}

// SetPollInterval changes how often the log is re-read without a
// filesystem notification
func (fw *Follower) SetPollInterval(d time.Duration) {
	fw.poll = d
}

// Follow runs until ctx is done or fn returns an error. ErrStopFollowing
// from fn ends the follow with a nil error.
func (fw *Follower) Follow(ctx context.Context, fn EventFunc) error {
	path := fw.run.TracePath()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s in %s: %w", TraceFileName, fw.run.Dir, domain.ErrNotFound)
		}
		return &domain.IOError{Op: "open trace", Path: path, Err: err}
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; some editors and writers replace the file.
	if err := watcher.Add(fw.run.Dir); err != nil {
		return &domain.IOError{Op: "watch run", Path: fw.run.Dir, Err: err}
	}

	t := &tail{file: f, path: path}

	// deliver reports whether following should end, and with what error
	deliver := func() (bool, error) {
		err := t.drain(fn)
		if errors.Is(err, ErrStopFollowing) {
			return true, nil
		}
		return err != nil, err
	}

	if stop, err := deliver(); stop {
		return err
	}

	ticker := time.NewTicker(fw.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if stop, err := deliver(); stop {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warnw("trace watcher error", "run", fw.run.Name(), "error", err)
		case <-ticker.C:
			if stop, err := deliver(); stop {
				return err
			}
		}
	}
}

// tail reads complete lines from an open log, keeping any trailing
// partial line until its newline arrives
type tail struct {
	file    *os.File
	path    string
	pending []byte
	lineNo  int
}

func (t *tail) drain(fn EventFunc) error {
	chunk := make([]byte, 32*1024)
	for {
		n, readErr := t.file.Read(chunk)
		t.pending = append(t.pending, chunk[:n]...)

		for {
			i := bytes.IndexByte(t.pending, '\n')
			if i < 0 {
				break
			}
			line := t.pending[:i]
			t.pending = t.pending[i+1:]
			t.lineNo++

			event, ok, err := decodeLine(line)
			if err != nil {
				return &domain.ParseError{Path: t.path, Line: t.lineNo, Err: err}
			}
			if !ok {
				continue
			}
			if err := fn(event); err != nil {
				return err
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return &domain.IOError{Op: "read trace", Path: t.path, Err: readErr}
		}
	}
}
