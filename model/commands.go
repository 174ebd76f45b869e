package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"linguatui/assistant"
	"linguatui/config"
)

const promptTimeout = 120 * time.Second

// SendPrompt starts a prompt against the preferred backend. Deltas arrive
// as StreamDeltaMsg through the model's channel; the stream ends with
// exactly one StreamDoneMsg or StreamErrorMsg. The returned command is the
// first wait on the channel; the update loop re-arms it after each delta.
func (m *Model) SendPrompt(input string) tea.Cmd {
	router := m.Clients.Router
	target := router.Identity()

	ch := make(chan tea.Msg, 16)
	m.deltaCh = ch

	go func() {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] prompt started, target=%s", target)
		}

		ctx, cancel := context.WithTimeout(context.Background(), promptTimeout)
		defer cancel()

		var full strings.Builder
		startTime := time.Now()

		err := router.Prompt(ctx, input, func(d assistant.Delta) error {
			full.WriteString(d.Text)
			ch <- StreamDeltaMsg{Delta: d}
			return nil
		})

		elapsed := time.Since(startTime)

		if err != nil {
			aerr, ok := assistant.AsError(err)
			if !ok {
				aerr = assistant.TransportError("Request failed", err)
			}
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Model] prompt failed after %v: %v", elapsed, aerr)
			}
			ch <- StreamErrorMsg{Err: aerr}
		} else {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Model] prompt complete after %v, %d chars", elapsed, full.Len())
			}
			ch <- StreamDoneMsg{FullResponse: full.String(), Model: target}
		}
		close(ch)
	}()

	return m.WaitForDelta()
}

// WaitForDelta blocks on the active stream channel for the next message.
func (m *Model) WaitForDelta() tea.Cmd {
	ch := m.deltaCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// FetchServerModels lists the models installed on the self-hosted server.
func (m *Model) FetchServerModels() tea.Cmd {
	client := m.Clients.SelfHosted
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := client.ListModels(ctx)
		return ServerModelsMsg{
			Models: models,
			Err:    err,
		}
	}
}

// WatchAvailability ticks while the on-device model is downloading so the
// UI can refresh its state line.
func (m *Model) WatchAvailability() tea.Cmd {
	if m.Clients.Tracker == nil || m.Clients.Tracker.Done() {
		return nil
	}
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return AvailabilityTickMsg{}
	})
}

// GlobalSearch queries the cross-session search index.
func (m *Model) GlobalSearch(query string) tea.Cmd {
	index := m.SearchIndex
	if index == nil {
		return nil
	}
	return func() tea.Msg {
		matches, err := index.SearchAllSessions(query)
		return GlobalSearchMsg{Matches: matches, Err: err}
	}
}
