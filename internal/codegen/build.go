package codegen

import (
	"path/filepath"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// Result is the outcome of building one flow
type Result struct {
	Pipeline *Pipeline
	Files    []File
	Hash     string
	Write    *WriteResult
}

// FlowDir returns the directory the flow for p is written to
func FlowDir(flowsDir string, p *Pipeline) string {
	return filepath.Join(flowsDir, p.FlowName)
}

// Build renders spec with l and writes the files under flowsDir with w
func Build(spec *domain.FlowSpec, specPath, flowsDir string, l *Loader, w *Writer, opts WriteOptions) (*Result, error) {
	p := Generate(spec, specPath)
	files, err := l.Render(p)
	if err != nil {
		return nil, err
	}
	res, err := w.Write(FlowDir(flowsDir, p), files, opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Pipeline: p,
		Files:    files,
		Hash:     ContentHash(files),
		Write:    res,
	}, nil
}
