package codegen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// WriteOptions controls how generated files reach the flow directory
type WriteOptions struct {
	Force  bool // replace the generated files of an existing flow
	DryRun bool // report what would be written without touching disk
}

// WrittenFile is one file of a write plan
type WrittenFile struct {
	Name string
	Path string
	Size int
}

// WriteResult describes a completed or planned write
type WriteResult struct {
	Dir     string
	Files   []WrittenFile
	Existed bool
	DryRun  bool
}

// TotalSize is the sum of all file sizes
func (r *WriteResult) TotalSize() uint64 {
	var n uint64
	for _, f := range r.Files {
		n += uint64(f.Size)
	}
	return n
}

// Writer places rendered files into a flow directory
type Writer struct {
	logger *zap.SugaredLogger
}

// NewWriter creates a writer; a nil logger discards output
func NewWriter(logger *zap.SugaredLogger) *Writer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Writer{logger: logger}
}

// Write stores files in flowDir. Every file is first staged as a temp
// file inside flowDir; only when all are staged are they renamed into
// place, in order. Files in flowDir that are not part of files are left
// alone.
func (w *Writer) Write(flowDir string, files []File, opts WriteOptions) (*WriteResult, error) {
	res := &WriteResult{Dir: flowDir, DryRun: opts.DryRun}
	for _, f := range files {
		res.Files = append(res.Files, WrittenFile{
			Name: f.Name,
			Path: filepath.Join(flowDir, f.Name),
			Size: len(f.Content),
		})
	}

	info, err := os.Stat(flowDir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, &domain.IOError{Op: "write flow", Path: flowDir, Err: errors.New("not a directory")}
		}
		res.Existed = true
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &domain.IOError{Op: "stat", Path: flowDir, Err: err}
	}

	if opts.DryRun {
		return res, nil
	}
	if res.Existed && !opts.Force {
		return nil, fmt.Errorf("flow %s: %w", flowDir, domain.ErrAlreadyExists)
	}

	if err := os.MkdirAll(flowDir, 0755); err != nil {
		return nil, &domain.IOError{Op: "create directory", Path: flowDir, Err: err}
	}

	staged, err := w.stage(flowDir, files)
	if err != nil {
		return nil, err
	}

	for i, tmp := range staged {
		dst := res.Files[i].Path
		if err := os.Rename(tmp, dst); err != nil {
			removeAll(staged[i:])
			return nil, &domain.IOError{Op: "rename", Path: dst, Err: err}
		}
		w.logger.Debugw("wrote file", "path", dst, "bytes", res.Files[i].Size)
	}

	w.logger.Infow("flow written", "dir", flowDir, "files", len(files), "replaced", res.Existed)
	return res, nil
}

// stage writes each file to a temp file next to its target. On failure
// every staged file is removed.
func (w *Writer) stage(dir string, files []File) ([]string, error) {
	staged := make([]string, 0, len(files))
	for _, f := range files {
		tmp, err := os.CreateTemp(dir, "."+f.Name+".*.tmp")
		if err != nil {
			removeAll(staged)
			return nil, &domain.IOError{Op: "create temp file", Path: dir, Err: err}
		}
		staged = append(staged, tmp.Name())

		_, werr := tmp.Write(f.Content)
		cerr := tmp.Close()
		if werr == nil {
			werr = cerr
		}
		if werr == nil {
			werr = os.Chmod(tmp.Name(), 0644)
		}
		if werr != nil {
			removeAll(staged)
			return nil, &domain.IOError{Op: "write", Path: tmp.Name(), Err: werr}
		}
		w.logger.Debugw("staged file", "name", f.Name, "tmp", tmp.Name())
	}
	return staged, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
