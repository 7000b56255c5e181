package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if len(m.candidates) > 0 {
				m.chosen = m.cursor
			}
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.candidates)-1 {
				m.cursor++
			}
			if m.cursor >= m.scroll+maxVisible {
				m.scroll = m.cursor - maxVisible + 1
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
			if m.cursor < m.scroll {
				m.scroll = m.cursor
			}
		case "g", "home":
			m.cursor = 0
			m.scroll = 0
		case "G", "end":
			if n := len(m.candidates); n > 0 {
				m.cursor = n - 1
				if m.cursor >= maxVisible {
					m.scroll = m.cursor - maxVisible + 1
				}
			}
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			// direct pick among the visible rows
			i := m.scroll + int(msg.String()[0]-'1')
			if i < len(m.candidates) {
				m.chosen = i
				m.cursor = i
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}
