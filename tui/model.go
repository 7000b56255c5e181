// Package tui provides the interactive picker shown when a lookup matches
// several runs or specs.
package tui

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user leaves the picker without
// choosing
var ErrCancelled = errors.New("selection cancelled")

// maxVisible is the number of candidates shown at once
const maxVisible = 10

// Model is the picker application model
type Model struct {
	// Data
	title      string
	candidates []string
	labels     []string

	// UI state
	cursor int
	scroll int
	width  int
	height int

	// Result
	chosen    int
	cancelled bool
}

// ModelConfig holds initial data for the picker
type ModelConfig struct {
	Title      string
	Candidates []string
	// Labels are shown instead of candidates when set; same length
	Labels []string
}

// NewModel creates a picker with the cursor on the first candidate
func NewModel(cfg ModelConfig) Model {
	labels := cfg.Labels
	if len(labels) != len(cfg.Candidates) {
		labels = cfg.Candidates
	}
	return Model{
		title:      cfg.Title,
		candidates: cfg.Candidates,
		labels:     labels,
		chosen:     -1,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Chosen returns the selected candidate, if any
func (m Model) Chosen() (string, bool) {
	if m.chosen < 0 || m.chosen >= len(m.candidates) {
		return "", false
	}
	return m.candidates[m.chosen], true
}

// Pick runs the picker on in/out and returns the chosen candidate
func Pick(cfg ModelConfig, in io.Reader, out io.Writer) (string, error) {
	if len(cfg.Candidates) == 0 {
		return "", ErrCancelled
	}

	p := tea.NewProgram(NewModel(cfg), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}

	choice, ok := final.(Model).Chosen()
	if !ok {
		return "", ErrCancelled
	}
	return choice, nil
}
