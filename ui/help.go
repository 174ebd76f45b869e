package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderHelpModal(width, height int) string {
	modalWidth := width - 10
	if modalWidth > 64 {
		modalWidth = 64
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Keyboard Shortcuts")

	rows := [][2]string{
		{"Enter", "Send message"},
		{"Alt+Enter", "Insert newline"},
		{"!en / !es", "Translate prefixed text to the other language"},
		{"Alt+M", "Model selector"},
		{"Alt+S", "Session manager"},
		{"Alt+N", "New session"},
		{"Alt+O", "Settings"},
		{"Alt+F", "Search current session"},
		{"Alt+G", "Search all sessions"},
		{"Alt+Y", "Copy last answer"},
		{"Alt+C", "Copy whole conversation"},
		{"Alt+J/K", "Scroll half page"},
		{"Alt+H", "Toggle this help"},
		{"Alt+Q", "Quit"},
	}

	keyStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var lines []string
	for _, row := range rows {
		key := keyStyle.Render(row[0])
		padding := 14 - len(row[0])
		if padding < 1 {
			padding = 1
		}
		lines = append(lines, "  "+key+strings.Repeat(" ", padding)+row[1])
	}

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(FormatFooter("Esc", "Close"))

	sections := []string{titleSection, ""}
	sections = append(sections, lines...)
	sections = append(sections, "", footerSection)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n"))
}
