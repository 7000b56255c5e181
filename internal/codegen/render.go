package codegen

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"text/template"
)

// File is one generated source file
type File struct {
	Name    string
	Content []byte
}

// outputs lists the generated files in the order they are written
var outputs = []struct {
	name     string
	template string
}{
	{"__init__.py", "__init__.py.tmpl"},
	{"graph.py", "graph.py.tmpl"},
	{"run.py", "run.py.tmpl"},
}

var funcs = template.FuncMap{
	"pyquote":   pyquote,
	"docstring": docstring,
	"oneline":   oneline,
	"join":      strings.Join,
	"inc":       func(i int) int { return i + 1 },
	"node":      nodeExpr,
}

// Render executes every template against p
func (l *Loader) Render(p *Pipeline) ([]File, error) {
	files := make([]File, 0, len(outputs))
	for _, out := range outputs {
		content, err := l.Execute(out.template, p)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: out.name, Content: content})
	}
	return files, nil
}

// ContentHash returns a hex sha256 over the names and contents of files
func ContentHash(files []File) string {
	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write(f.Content)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// pyquote renders s as a double-quoted Python string literal
func pyquote(s string) string {
	return strconv.Quote(s)
}

// docstring makes s safe inside a triple-quoted Python string
func docstring(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"""`, `\"\"\"`)
}

// oneline collapses s so it fits in a single-line comment
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// nodeExpr renders an edge endpoint: graph markers bare, node ids quoted
func nodeExpr(id string) string {
	if id == Start || id == End {
		return id
	}
	return pyquote(id)
}
