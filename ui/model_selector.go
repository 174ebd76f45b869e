package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"linguatui/assistant"
)

// modelEntry is one selectable row in the backend picker. Self-hosted
// rows carry the server model name; picking one sets both the preference
// and the server model.
type modelEntry struct {
	Identity    assistant.Identity
	Label       string
	Detail      string
	ServerModel string
}

// buildModelEntries lists every selectable backend, expanding the
// self-hosted entry into one row per installed server model.
func (a *AppView) buildModelEntries() []modelEntry {
	var entries []modelEntry

	clients := a.dataModel.Clients

	if clients.OnDevice != nil {
		detail := ""
		if clients.Tracker != nil {
			detail = clients.Tracker.State().String()
		}
		entries = append(entries, modelEntry{
			Identity: assistant.IdentityOnDevice,
			Label:    "On-device model",
			Detail:   detail,
		})
	}

	if clients.CloudFlash != nil {
		entries = append(entries, modelEntry{
			Identity: assistant.IdentityCloudFlash,
			Label:    "Gemini Flash",
			Detail:   a.dataModel.Config.Cloud.FlashModel,
		})
	}

	if clients.Claude != nil {
		entries = append(entries, modelEntry{
			Identity: assistant.IdentityCloudClaude,
			Label:    "Claude",
			Detail:   a.dataModel.Config.Cloud.ClaudeModel,
		})
	}

	if clients.SelfHosted != nil {
		if len(a.serverModels) == 0 {
			entries = append(entries, modelEntry{
				Identity:    assistant.IdentitySelfHosted,
				Label:       "Self-hosted server",
				Detail:      a.dataModel.Config.Server.Model,
				ServerModel: a.dataModel.Config.Server.Model,
			})
		}
		for _, name := range a.serverModels {
			entries = append(entries, modelEntry{
				Identity:    assistant.IdentitySelfHosted,
				Label:       "Self-hosted: " + name,
				ServerModel: name,
			})
		}
	}

	return entries
}

func (a *AppView) openModelSelector() tea.Cmd {
	a.modelEntries = a.buildModelEntries()
	a.selectedModelIdx = 0
	a.modelFilterMode = false
	a.filteredModelEntries = nil
	a.showModelSelector = true

	// Refresh the server model list in the background
	return a.dataModel.FetchServerModels()
}

// applyModelSelection commits the highlighted entry: preference for every
// row, plus the server model for self-hosted rows.
func (a *AppView) applyModelSelection(entry modelEntry) tea.Cmd {
	if entry.Identity == assistant.IdentitySelfHosted && entry.ServerModel != "" {
		a.dataModel.Config.Server.Model = entry.ServerModel
		if a.dataModel.Clients.SelfHosted != nil {
			a.dataModel.Clients.SelfHosted.SetModel(entry.ServerModel)
		}
	}

	if err := a.dataModel.SetPreferredIdentity(entry.Identity); err != nil {
		return a.flash("Could not save preference: "+err.Error(), true)
	}
	return a.flash("Switched to "+entry.Label, false)
}

func (a AppView) handleModelSelectorKeys(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if a.modelFilterMode {
		switch msg.String() {
		case "esc":
			a.modelFilterMode = false
			a.modelFilterInput.Blur()
			a.filteredModelEntries = nil
			return a, nil
		case "enter":
			list := a.getModelEntries()
			if len(list) > 0 && a.selectedModelIdx < len(list) {
				entry := list[a.selectedModelIdx]
				a.showModelSelector = false
				a.modelFilterMode = false
				a.modelFilterInput.Blur()
				return a, a.applyModelSelection(entry)
			}
			return a, nil
		case "alt+j", "down":
			list := a.getModelEntries()
			if a.selectedModelIdx < len(list)-1 {
				a.selectedModelIdx++
			}
			return a, nil
		case "alt+k", "up":
			if a.selectedModelIdx > 0 {
				a.selectedModelIdx--
			}
			return a, nil
		}

		var cmd tea.Cmd
		a.modelFilterInput, cmd = a.modelFilterInput.Update(msg)

		filterValue := a.modelFilterInput.Value()
		if filterValue == "" {
			a.filteredModelEntries = a.modelEntries
		} else {
			targets := make([]string, len(a.modelEntries))
			for i, e := range a.modelEntries {
				targets[i] = e.Label
			}

			matches := fuzzy.Find(filterValue, targets)
			a.filteredModelEntries = make([]modelEntry, len(matches))
			for i, match := range matches {
				a.filteredModelEntries[i] = a.modelEntries[match.Index]
			}
		}

		list := a.getModelEntries()
		if a.selectedModelIdx >= len(list) && len(list) > 0 {
			a.selectedModelIdx = len(list) - 1
		}

		return a, cmd
	}

	switch msg.String() {
	case "/":
		a.modelFilterMode = true
		a.modelFilterInput.Focus()
		a.modelFilterInput.SetValue("")
		a.filteredModelEntries = a.modelEntries
		return a, textinput.Blink
	case "esc", "alt+m":
		a.showModelSelector = false
		return a, nil
	case "j", "down":
		list := a.getModelEntries()
		if a.selectedModelIdx < len(list)-1 {
			a.selectedModelIdx++
		}
		return a, nil
	case "k", "up":
		if a.selectedModelIdx > 0 {
			a.selectedModelIdx--
		}
		return a, nil
	case "enter":
		list := a.getModelEntries()
		if len(list) > 0 && a.selectedModelIdx < len(list) {
			entry := list[a.selectedModelIdx]
			a.showModelSelector = false
			return a, a.applyModelSelection(entry)
		}
		return a, nil
	}

	return a, nil
}

func renderModelSelector(entries []modelEntry, selectedIdx int, current assistant.Identity, filterMode bool, filterInput textinput.Model, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 72 {
		modalWidth = 72
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Select Model")

	var header string
	if filterMode {
		header = filterInput.View()
	} else {
		header = fmt.Sprintf("%d backends", len(entries))
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
	if len(entries) == 0 {
		emptyMsg := "No backends available"
		if filterMode {
			emptyMsg = "No matches found"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	}

	for i, entry := range entries {
		indicator := "  "
		if i == selectedIdx {
			indicator = "▶ "
		}

		currentMarker := ""
		if entry.Identity == current && entry.ServerModel == "" {
			currentMarker = " (current)"
		}

		label := runewidth.Truncate(entry.Label, modalWidth-24, "...")

		detail := entry.Detail
		spacing := modalWidth - runewidth.StringWidth(indicator+label+currentMarker+detail) - 4
		if spacing < 1 {
			spacing = 1
		}

		line := fmt.Sprintf("%s%s%s%s%s",
			indicator, label, currentMarker, strings.Repeat(" ", spacing), detail)

		lineStyle := lipgloss.NewStyle()
		if i == selectedIdx {
			lineStyle = lineStyle.Foreground(successColor).Bold(true)
		} else if entry.Identity == current {
			lineStyle = lineStyle.Foreground(accentColor).Bold(true)
		}

		lines = append(lines, lipgloss.NewStyle().
			Width(modalWidth).
			Render(lineStyle.Render(line)))
	}

	var footerText string
	if filterMode {
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Select", "Esc", "Cancel")
	} else {
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Select", "Esc", "Exit")
	}
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

	content := strings.Join(sections, "\n")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
