package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"linguatui/storage"
)

func (a *AppView) openMessageSearch() tea.Cmd {
	a.showMessageSearch = true
	a.messageSearchResults = nil
	a.selectedSearchIdx = 0
	a.messageSearchInput.SetValue("")
	a.messageSearchInput.Focus()
	return textinput.Blink
}

func (a *AppView) openGlobalSearch() tea.Cmd {
	a.showGlobalSearch = true
	a.globalSearchResults = nil
	a.selectedGlobalIdx = 0
	a.globalSearchInput.SetValue("")
	a.globalSearchInput.Focus()
	return textinput.Blink
}

func toStorageMessages(messages []Message) []storage.Message {
	out := make([]storage.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		out = append(out, storage.Message{
			Role:      m.Role,
			Content:   m.Content,
			Short:     m.Short,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func (a AppView) handleMessageSearchKeys(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.showMessageSearch = false
		a.messageSearchInput.Blur()
		return a, nil
	case "alt+j", "down":
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		return a, nil
	case "alt+k", "up":
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		return a, nil
	case "enter":
		a.showMessageSearch = false
		a.messageSearchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)

	a.messageSearchResults = storage.SearchMessages(toStorageMessages(a.dataModel.Messages), a.messageSearchInput.Value())
	if a.selectedSearchIdx >= len(a.messageSearchResults) {
		a.selectedSearchIdx = 0
	}

	return a, cmd
}

func (a AppView) handleGlobalSearchKeys(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.showGlobalSearch = false
		a.globalSearchInput.Blur()
		return a, nil
	case "alt+j", "down":
		if a.selectedGlobalIdx < len(a.globalSearchResults)-1 {
			a.selectedGlobalIdx++
		}
		return a, nil
	case "alt+k", "up":
		if a.selectedGlobalIdx > 0 {
			a.selectedGlobalIdx--
		}
		return a, nil
	case "enter":
		// Open the session the highlighted match belongs to
		if a.selectedGlobalIdx < len(a.globalSearchResults) {
			match := a.globalSearchResults[a.selectedGlobalIdx]
			a.showGlobalSearch = false
			a.globalSearchInput.Blur()
			return a, a.dataModel.LoadSession(match.SessionID)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.globalSearchInput, cmd = a.globalSearchInput.Update(msg)

	query := a.globalSearchInput.Value()
	if query == "" {
		a.globalSearchResults = nil
		return a, cmd
	}
	return a, tea.Batch(cmd, a.dataModel.GlobalSearch(query))
}

func renderMessageSearch(input textinput.Model, results []storage.MessageMatch, selectedIdx int, width, height int) string {
	lines := make([]string, 0, len(results))
	for i, r := range results {
		lines = append(lines, formatSearchLine(i == selectedIdx, r.Role, r.Preview, r.Timestamp.Format("15:04"), width))
	}
	return renderSearchModal("Search Messages", input, lines, len(results), width, height)
}

func renderGlobalSearch(input textinput.Model, results []storage.SessionMessageMatch, selectedIdx int, width, height int) string {
	lines := make([]string, 0, len(results))
	for i, r := range results {
		label := fmt.Sprintf("[%s] %s", r.SessionName, r.Preview)
		lines = append(lines, formatSearchLine(i == selectedIdx, r.Role, label, r.Timestamp.Format("Jan 2"), width))
	}
	return renderSearchModal("Search All Sessions", input, lines, len(results), width, height)
}

func formatSearchLine(selected bool, role, preview, when string, width int) string {
	modalWidth := searchModalWidth(width)

	indicator := "  "
	if selected {
		indicator = "▶ "
	}

	preview = strings.ReplaceAll(preview, "\n", " ")
	preview = runewidth.Truncate(preview, modalWidth-18, "...")

	spacing := modalWidth - runewidth.StringWidth(indicator+role+": "+preview+when) - 4
	if spacing < 1 {
		spacing = 1
	}

	line := fmt.Sprintf("%s%s: %s%s%s", indicator, role, preview, strings.Repeat(" ", spacing), when)

	lineStyle := lipgloss.NewStyle()
	if selected {
		lineStyle = lineStyle.Foreground(successColor).Bold(true)
	}
	return lipgloss.NewStyle().Width(modalWidth).Render(lineStyle.Render(line))
}

func searchModalWidth(width int) int {
	modalWidth := width - 10
	if modalWidth > 90 {
		modalWidth = 90
	}
	return modalWidth
}

func renderSearchModal(title string, input textinput.Model, lines []string, count, width, height int) string {
	modalWidth := searchModalWidth(width)

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(title)

	headerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(input.View())

	if len(lines) == 0 {
		msg := "Type to search"
		if input.Value() != "" {
			msg = "No matches"
		}
		lines = []string{lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(msg)}
	}

	maxLines := height - 10
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	footerText := FormatFooter("Type", "to search", "Alt+J/K", "Navigate", "Enter", "Open", "Esc", "Close")
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(fmt.Sprintf("%d results  %s", count, footerText))

	sections := []string{titleSection, headerSection, ""}
	sections = append(sections, lines...)
	sections = append(sections, "", footerSection)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n"))
}
