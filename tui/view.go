package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("255"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// View renders the picker
func (m Model) View() string {
	if m.chosen >= 0 || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	end := m.scroll + maxVisible
	if end > len(m.labels) {
		end = len(m.labels)
	}
	if m.scroll > 0 {
		b.WriteString(dimmedStyle.Render(fmt.Sprintf("  ↑ %d more", m.scroll)))
		b.WriteString("\n")
	}
	for i := m.scroll; i < end; i++ {
		line := fmt.Sprintf("%d. %s", i-m.scroll+1, m.labels[i])
		if m.width > 4 && lipgloss.Width(line) > m.width-4 {
			line = truncate(line, m.width-4)
		}
		if i == m.cursor {
			b.WriteString("> " + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + normalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if rest := len(m.labels) - end; rest > 0 {
		b.WriteString(dimmedStyle.Render(fmt.Sprintf("  ↓ %d more", rest)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimmedStyle.Render("j/k move • enter select • 1-9 pick • q cancel"))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width || width < 2 {
		return s
	}
	return string(runes[:width-1]) + "…"
}
