package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"linguatui/config"
	"linguatui/storage"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		headerHeight := 2
		inputHeight := 4
		statusHeight := 1
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - headerHeight - inputHeight - statusHeight
		a.textarea.SetWidth(msg.Width - 2)

		firstReady := !a.ready
		a.ready = true

		if a.dataModel.NeedsInitialRender {
			a.dataModel.NeedsInitialRender = false
			for i, m := range a.dataModel.Messages {
				if m.Role == "assistant" {
					cmds = append(cmds, a.renderMarkdownAsync(i, m.Content))
				}
			}
		}
		a.updateViewportContent(true)

		// Command line selection is sent once the window exists
		if firstReady && a.pendingSelection != "" {
			selection := a.pendingSelection
			a.pendingSelection = ""
			if cmd, ok := a.sendUserPrompt(selection); ok {
				cmds = append(cmds, cmd)
			}
		}

		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		if a.dataModel.Streaming {
			if a.currentResp.Len() == 0 {
				a.updateViewportContent(true)
			}
			return a, cmd
		}
		return a, nil

	case streamDeltaMsg, streamDoneMsg, streamErrorMsg, flashTickMsg:
		next, cmd := a.handleStreamingMessage(msg)
		return next, cmd

	case markdownRenderedMsg:
		if msg.MessageIndex >= 0 && msg.MessageIndex < len(a.dataModel.Messages) {
			a.dataModel.Messages[msg.MessageIndex].Rendered = msg.Rendered
			a.updateViewportContent(true)
		}
		return a, nil

	case serverModelsMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("server model list failed: %v", msg.Err)
			}
			return a, nil
		}
		a.serverModels = msg.Models
		if a.showModelSelector {
			a.modelEntries = a.buildModelEntries()
		}
		return a, nil

	case availabilityTickMsg:
		// Keep ticking while the on-device download runs; the title bar
		// picks the state up on render.
		return a, a.dataModel.WatchAvailability()

	case sessionsListMsg:
		if msg.Err != nil {
			return a, a.flash("Session list failed: "+msg.Err.Error(), true)
		}
		a.sessionList = msg.Sessions
		if a.selectedSessionIdx >= len(a.sessionList) && len(a.sessionList) > 0 {
			a.selectedSessionIdx = len(a.sessionList) - 1
		}
		return a, nil

	case sessionLoadedMsg:
		if msg.Err != nil {
			return a, a.flash("Could not open session: "+msg.Err.Error(), true)
		}
		if msg.Session == nil {
			return a, nil
		}
		a.showSessionManager = false
		a.loadSessionIntoView(msg.Session)

		for i, m := range a.dataModel.Messages {
			if m.Role == "assistant" {
				cmds = append(cmds, a.renderMarkdownAsync(i, m.Content))
			}
		}
		return a, tea.Batch(cmds...)

	case sessionSavedMsg:
		if msg.Err != nil {
			return a, a.flash("Session save failed: "+msg.Err.Error(), true)
		}
		a.dataModel.SessionDirty = false
		return a, nil

	case sessionRenamedMsg:
		if msg.Err != nil {
			return a, a.flash("Rename failed: "+msg.Err.Error(), true)
		}
		return a, a.dataModel.FetchSessionList()

	case sessionExportedMsg:
		if msg.Err != nil {
			return a, a.flash("Export failed: "+msg.Err.Error(), true)
		}
		return a, a.flash("Exported to "+msg.Path, false)

	case globalSearchMsg:
		if msg.Err != nil {
			return a, a.flash("Search failed: "+msg.Err.Error(), true)
		}
		a.globalSearchResults = msg.Matches
		if a.selectedGlobalIdx >= len(a.globalSearchResults) {
			a.selectedGlobalIdx = 0
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal handlers first, one at a time
	if a.showHelp {
		if msg.String() == "esc" || msg.String() == "alt+h" {
			a.showHelp = false
		}
		return a, nil
	}
	if a.showModelSelector {
		next, cmd := a.handleModelSelectorKeys(msg)
		return next, cmd
	}
	if a.showSettings {
		next, cmd := a.handleSettingsKeys(msg)
		return next, cmd
	}
	if a.showSessionManager {
		next, cmd := a.handleSessionManagerKeys(msg)
		return next, cmd
	}
	if a.showGlobalSearch {
		next, cmd := a.handleGlobalSearchKeys(msg)
		return next, cmd
	}
	if a.showMessageSearch {
		next, cmd := a.handleMessageSearchKeys(msg)
		return next, cmd
	}

	switch msg.String() {
	case "alt+q", "ctrl+c":
		a.dataModel.Quitting = true
		if a.dataModel.SessionDirty {
			return a, tea.Sequence(a.dataModel.SaveCurrentSession(), tea.Quit)
		}
		return a, tea.Quit

	case "enter":
		input := strings.TrimSpace(a.textarea.Value())
		if input == "" {
			return a, nil
		}
		if cmd, ok := a.sendUserPrompt(input); ok {
			a.textarea.Reset()
			return a, cmd
		}
		return a, nil

	case "alt+m":
		return a, a.openModelSelector()

	case "alt+s":
		return a, a.openSessionManager()

	case "alt+n":
		a.dataModel.CreateNewSession("")
		a.updateViewportContent(true)
		return a, a.flash("Started a new session", false)

	case "alt+o":
		a.openSettings()
		return a, nil

	case "alt+f":
		return a, a.openMessageSearch()

	case "alt+g":
		return a, a.openGlobalSearch()

	case "alt+h":
		a.showHelp = true
		return a, nil

	case "alt+y":
		// Copy last assistant message
		for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
			if a.dataModel.Messages[i].Role == "assistant" {
				clipboard.WriteAll(a.dataModel.Messages[i].Content)
				return a, a.flash("Copied last answer", false)
			}
		}
		return a, nil

	case "alt+c":
		// Copy all messages
		var allText strings.Builder
		for _, m := range a.dataModel.Messages {
			role := m.Role
			switch role {
			case "user":
				role = "You"
			case "assistant":
				role = "Assistant"
			}
			allText.WriteString(fmt.Sprintf("[%s] %s:\n%s\n\n",
				m.Timestamp.Format("15:04"),
				role,
				m.DisplayText()))
		}
		clipboard.WriteAll(allText.String())
		return a, a.flash("Copied conversation", false)

	case "alt+j", "alt+down":
		a.viewport.HalfPageDown()
		return a, nil

	case "alt+k", "alt+up":
		a.viewport.HalfPageUp()
		return a, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// loadSessionIntoView replaces the conversation with a stored session and
// reseeds every client's history so backends see the restored turns.
func (a *AppView) loadSessionIntoView(session *storage.Session) {
	a.dataModel.CurrentSession = session
	a.dataModel.SessionDirty = false

	var messages []Message
	for _, sMsg := range session.Messages {
		messages = append(messages, Message{
			Role:      sMsg.Role,
			Content:   sMsg.Content,
			Short:     sMsg.Short,
			Rendered:  sMsg.Content,
			Model:     sMsg.Model,
			Timestamp: sMsg.Timestamp,
		})
	}
	a.dataModel.Messages = messages

	if a.dataModel.Clients != nil {
		a.dataModel.Clients.ResetHistories(append(config.SeedTurns(), session.Turns()...))
	}
	if a.dataModel.SessionStorage != nil {
		a.dataModel.SessionStorage.SaveCurrentSessionID(session.ID)
	}

	a.updateViewportContent(true)
}
