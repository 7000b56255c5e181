// Package display formats events and command results for the terminal.
package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/hochfrequenz/agentflow/internal/domain"
)

// FallbackIcon marks event kinds without an icon of their own
const FallbackIcon = "•"

var icons = map[domain.EventKind]string{
	domain.KindInit:          "🚀",
	domain.KindPlan:          "📋",
	domain.KindToolSearch:    "🔍",
	domain.KindToolUse:       "🔧",
	domain.KindToolResult:    "📤",
	domain.KindPromptSearch:  "📖",
	domain.KindStepPrepare:   "📝",
	domain.KindStepExecute:   "▶️",
	domain.KindStrategyShift: "🔄",
	domain.KindError:         "❌",
	domain.KindSummary:       "✅",
}

var (
	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	errorKindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
)

// Icon returns the marker shown for kind
func Icon(kind domain.EventKind) string {
	if icon, ok := icons[kind]; ok {
		return icon
	}
	return FallbackIcon
}

// FormatEvent renders the one-line "icon [type] message" form
func FormatEvent(ev domain.Event) string {
	style := kindStyle
	if ev.Kind == domain.KindError {
		style = errorKindStyle
	}
	return fmt.Sprintf("%s %s %s", Icon(ev.Kind), style.Render("["+string(ev.Kind)+"]"), ev.Message)
}

// WriteEventJSON writes ev as indented JSON, keeping non-ASCII text as is
func WriteEventJSON(w io.Writer, ev domain.Event) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ev); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Success styles a completed-action line
func Success(format string, args ...any) string {
	return successStyle.Render("✓ " + fmt.Sprintf(format, args...))
}

// Warning styles a non-fatal problem
func Warning(format string, args ...any) string {
	return warningStyle.Render("! " + fmt.Sprintf(format, args...))
}

// Failure styles an error line
func Failure(format string, args ...any) string {
	return failureStyle.Render(fmt.Sprintf(format, args...))
}

// Dim styles secondary information
func Dim(s string) string {
	return dimmedStyle.Render(s)
}

// Header styles a section title
func Header(s string) string {
	return headerStyle.Render(s)
}

// Size renders a byte count for humans
func Size(n uint64) string {
	return humanize.Bytes(n)
}

// Ago renders a timestamp relative to now
func Ago(t time.Time) string {
	return humanize.Time(t)
}

// IsInteractive reports whether f is a terminal
func IsInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
