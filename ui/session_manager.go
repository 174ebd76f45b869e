package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"linguatui/storage"
)

func (a *AppView) openSessionManager() tea.Cmd {
	a.showSessionManager = true
	a.selectedSessionIdx = 0
	a.sessionRenameMode = false
	a.sessionExportMode = false
	a.sessionFilterMode = false
	a.confirmDeleteSession = nil
	return a.dataModel.FetchSessionList()
}

func (a AppView) handleSessionManagerKeys(msg tea.KeyMsg) (AppView, tea.Cmd) {
	// Delete confirmation has priority
	if a.confirmDeleteSession != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			id := a.confirmDeleteSession.ID
			a.confirmDeleteSession = nil
			if a.dataModel.CurrentSession != nil && a.dataModel.CurrentSession.ID == id {
				a.dataModel.CreateNewSession("")
				a.updateViewportContent(true)
			}
			return a, a.dataModel.DeleteSession(id)
		default:
			a.confirmDeleteSession = nil
			return a, nil
		}
	}

	if a.sessionRenameMode {
		switch msg.String() {
		case "esc":
			a.sessionRenameMode = false
			a.sessionRenameInput.Blur()
			return a, nil
		case "enter":
			list := a.getSessionList()
			if a.selectedSessionIdx < len(list) {
				name := strings.TrimSpace(a.sessionRenameInput.Value())
				a.sessionRenameMode = false
				a.sessionRenameInput.Blur()
				if name != "" {
					id := list[a.selectedSessionIdx].ID
					if a.dataModel.CurrentSession != nil && a.dataModel.CurrentSession.ID == id {
						a.dataModel.CurrentSession.Name = name
					}
					return a, tea.Sequence(a.dataModel.RenameSession(id, name), a.dataModel.FetchSessionList())
				}
			}
			return a, nil
		}
		var cmd tea.Cmd
		a.sessionRenameInput, cmd = a.sessionRenameInput.Update(msg)
		return a, cmd
	}

	if a.sessionExportMode {
		switch msg.String() {
		case "esc":
			a.sessionExportMode = false
			a.sessionExportInput.Blur()
			return a, nil
		case "enter":
			list := a.getSessionList()
			if a.selectedSessionIdx < len(list) {
				path := strings.TrimSpace(a.sessionExportInput.Value())
				a.sessionExportMode = false
				a.sessionExportInput.Blur()
				if path != "" {
					return a, a.dataModel.ExportSession(list[a.selectedSessionIdx].ID, path)
				}
			}
			return a, nil
		}
		var cmd tea.Cmd
		a.sessionExportInput, cmd = a.sessionExportInput.Update(msg)
		return a, cmd
	}

	if a.sessionFilterMode {
		switch msg.String() {
		case "esc":
			a.sessionFilterMode = false
			a.sessionFilterInput.Blur()
			a.filteredSessionList = nil
			return a, nil
		case "enter":
			return a.loadSelectedSession()
		case "alt+j", "down":
			list := a.getSessionList()
			if a.selectedSessionIdx < len(list)-1 {
				a.selectedSessionIdx++
			}
			return a, nil
		case "alt+k", "up":
			if a.selectedSessionIdx > 0 {
				a.selectedSessionIdx--
			}
			return a, nil
		}

		var cmd tea.Cmd
		a.sessionFilterInput, cmd = a.sessionFilterInput.Update(msg)

		filterValue := a.sessionFilterInput.Value()
		if filterValue == "" {
			a.filteredSessionList = a.sessionList
		} else {
			targets := make([]string, len(a.sessionList))
			for i, s := range a.sessionList {
				targets[i] = s.Name
			}

			matches := fuzzy.Find(filterValue, targets)
			a.filteredSessionList = make([]storage.SessionMetadata, len(matches))
			for i, match := range matches {
				a.filteredSessionList[i] = a.sessionList[match.Index]
			}
		}

		list := a.getSessionList()
		if a.selectedSessionIdx >= len(list) && len(list) > 0 {
			a.selectedSessionIdx = len(list) - 1
		}

		return a, cmd
	}

	switch msg.String() {
	case "/":
		a.sessionFilterMode = true
		a.sessionFilterInput.Focus()
		a.sessionFilterInput.SetValue("")
		a.filteredSessionList = a.sessionList
		return a, textinput.Blink
	case "esc", "alt+s":
		a.showSessionManager = false
		return a, nil
	case "j", "down":
		list := a.getSessionList()
		if a.selectedSessionIdx < len(list)-1 {
			a.selectedSessionIdx++
		}
		return a, nil
	case "k", "up":
		if a.selectedSessionIdx > 0 {
			a.selectedSessionIdx--
		}
		return a, nil
	case "enter":
		return a.loadSelectedSession()
	case "n":
		list := a.getSessionList()
		if a.selectedSessionIdx < len(list) {
			a.sessionRenameMode = true
			a.sessionRenameInput.SetValue(list[a.selectedSessionIdx].Name)
			a.sessionRenameInput.Focus()
			return a, textinput.Blink
		}
		return a, nil
	case "e":
		list := a.getSessionList()
		if a.selectedSessionIdx < len(list) {
			a.sessionExportMode = true
			a.sessionExportInput.SetValue(storage.GenerateExportPath(list[a.selectedSessionIdx].Name))
			a.sessionExportInput.Focus()
			return a, textinput.Blink
		}
		return a, nil
	case "d":
		list := a.getSessionList()
		if a.selectedSessionIdx < len(list) {
			meta := list[a.selectedSessionIdx]
			a.confirmDeleteSession = &meta
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) loadSelectedSession() (AppView, tea.Cmd) {
	list := a.getSessionList()
	if len(list) == 0 || a.selectedSessionIdx >= len(list) {
		return a, nil
	}
	a.showSessionManager = false
	a.sessionFilterMode = false
	a.sessionFilterInput.Blur()
	return a, a.dataModel.LoadSession(list[a.selectedSessionIdx].ID)
}

func renderSessionManager(sessions []storage.SessionMetadata, selectedIdx int, currentSessionID string, renameMode bool, renameInput textinput.Model, exportMode bool, exportInput textinput.Model, confirmDelete *storage.SessionMetadata, filterMode bool, filterInput textinput.Model, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Sessions")

	var header string
	switch {
	case confirmDelete != nil:
		header = ErrorStyle.Render(fmt.Sprintf("Delete %q? y/n", confirmDelete.Name))
	case renameMode:
		header = renameInput.View()
	case exportMode:
		header = exportInput.View()
	case filterMode:
		header = filterInput.View()
	default:
		header = fmt.Sprintf("%d sessions", len(sessions))
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var lines []string
	if len(sessions) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render("No saved sessions"))
	}

	maxLines := height - 10
	startIdx := 0
	if maxLines > 0 && selectedIdx >= maxLines {
		startIdx = selectedIdx - maxLines + 1
	}

	for i := startIdx; i < len(sessions) && (maxLines <= 0 || i < startIdx+maxLines); i++ {
		s := sessions[i]

		indicator := "  "
		if i == selectedIdx {
			indicator = "▶ "
		}

		currentMarker := ""
		if s.ID == currentSessionID {
			currentMarker = " (current)"
		}

		name := runewidth.Truncate(s.Name, modalWidth-36, "...")
		detail := fmt.Sprintf("%d msgs  %s", s.MessageCount, s.UpdatedAt.Format("Jan 2 15:04"))

		spacing := modalWidth - runewidth.StringWidth(indicator+name+currentMarker+detail) - 4
		if spacing < 1 {
			spacing = 1
		}

		line := fmt.Sprintf("%s%s%s%s%s", indicator, name, currentMarker, strings.Repeat(" ", spacing), detail)

		lineStyle := lipgloss.NewStyle()
		if i == selectedIdx {
			lineStyle = lineStyle.Foreground(successColor).Bold(true)
		} else if s.ID == currentSessionID {
			lineStyle = lineStyle.Foreground(accentColor).Bold(true)
		}

		lines = append(lines, lipgloss.NewStyle().
			Width(modalWidth).
			Render(lineStyle.Render(line)))
	}

	footerText := FormatFooter("j/k", "Navigate", "Enter", "Open", "n", "Rename", "e", "Export", "d", "Delete", "/", "Filter", "Esc", "Close")
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	sections := []string{titleSection, headerSection, ""}
	sections = append(sections, lines...)
	sections = append(sections, "", footerSection)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n"))
}
