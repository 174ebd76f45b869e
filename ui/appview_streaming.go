package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"linguatui/assistant"
	"linguatui/config"
)

const pendingPlaceholder = "Waiting for response..."

func flashClearCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return flashTickMsg{}
	})
}

// sendUserPrompt turns raw input into a prompt and starts the stream.
// A "!en"/"!es" prefix requests a translation to the other language; the
// conversation shows the raw text while the backend gets the instruction.
func (a *AppView) sendUserPrompt(input string) (tea.Cmd, bool) {
	if a.dataModel.Streaming {
		return nil, false
	}

	var pending assistant.PendingPrompt
	if lang, stripped, ok := assistant.DetectInputLanguage(input); ok {
		if stripped == "" {
			return nil, false
		}
		pending = assistant.BuildTranslationPrompt(stripped, lang.Opposite())
	} else {
		pending = assistant.BuildExplanationPrompt(input)
	}

	now := time.Now()
	a.dataModel.Messages = append(a.dataModel.Messages, Message{
		Role:      "user",
		Content:   pending.Full,
		Short:     pending.Short,
		Rendered:  pending.Full,
		Timestamp: now,
	})
	// The user's turn is part of the session even if the reply fails
	a.dataModel.SessionDirty = true

	// Pending placeholder, removed when the first delta or an error
	// arrives
	a.dataModel.Messages = append(a.dataModel.Messages, Message{
		Role:      "system",
		Content:   pendingPlaceholder,
		Rendered:  pendingPlaceholder,
		Timestamp: now,
	})

	a.dataModel.Streaming = true
	a.currentResp.Reset()
	a.streamModel = ""
	a.updateViewportContent(true)

	return tea.Batch(
		a.dataModel.SendPrompt(pending.Full),
		a.loadingSpinner.Tick,
	), true
}

// removePendingPlaceholder drops the trailing system placeholder, if any.
func (a *AppView) removePendingPlaceholder() {
	n := len(a.dataModel.Messages)
	if n > 0 && a.dataModel.Messages[n-1].Role == "system" {
		a.dataModel.Messages = a.dataModel.Messages[:n-1]
	}
}

// handleStreamingMessage handles all streaming-related messages
func (a AppView) handleStreamingMessage(msg tea.Msg) (AppView, tea.Cmd) {
	switch msg := msg.(type) {
	case streamDeltaMsg:
		// Ignore if user cancelled
		if !a.dataModel.Streaming {
			return a, a.dataModel.WaitForDelta()
		}

		// First delta replaces the placeholder with the growing reply
		if a.currentResp.Len() == 0 {
			a.removePendingPlaceholder()
		}
		a.currentResp.WriteString(msg.Delta.Text)
		a.streamModel = string(msg.Delta.Model)
		a.updateStreamingMessage()

		return a, a.dataModel.WaitForDelta()

	case streamDoneMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("stream done - response length: %d", len(msg.FullResponse))
		}

		a.dataModel.Streaming = false
		a.removePendingPlaceholder()
		a.currentResp.Reset()

		a.dataModel.Messages = append(a.dataModel.Messages, Message{
			Role:      "assistant",
			Content:   msg.FullResponse,
			Rendered:  msg.FullResponse, // Plain text until markdown lands
			Model:     string(msg.Model),
			Timestamp: time.Now(),
		})

		messageIndex := len(a.dataModel.Messages) - 1
		a.updateViewportContent(true)
		a.dataModel.SessionDirty = true

		return a, tea.Batch(
			a.renderMarkdownAsync(messageIndex, msg.FullResponse),
			a.dataModel.AutoSaveSession(),
		)

	case streamErrorMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("stream error: %v", msg.Err)
		}

		a.dataModel.Streaming = false
		a.currentResp.Reset()

		// The placeholder comes down with the failure; the conversation
		// keeps only the user's turn, which still gets saved.
		a.removePendingPlaceholder()
		a.updateViewportContent(true)

		return a, tea.Batch(
			a.flash(msg.Err.Title+": "+msg.Err.Description, true),
			a.dataModel.AutoSaveSession(),
		)

	case flashTickMsg:
		a.flashTicks--
		if a.flashTicks <= 0 {
			a.flashTicks = 0
			a.flashMessage = ""
		}
		return a, nil
	}

	return a, nil
}
