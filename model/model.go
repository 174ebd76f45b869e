package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"linguatui/assistant"
	"linguatui/config"
	"linguatui/provider"
	"linguatui/storage"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config         *config.Config
	Clients        *provider.Clients
	SessionStorage *storage.SessionStorage
	SearchIndex    *storage.SearchIndex

	// Application data
	Messages       []Message
	CurrentSession *storage.Session

	// Runtime state (not UI)
	Streaming          bool
	SessionDirty       bool
	NeedsInitialRender bool
	Quitting           bool

	// Active stream. Deltas flow through the channel so the update loop
	// can re-arm a wait command after each one.
	deltaCh chan tea.Msg

	// Application metadata
	Version string
}

// NewModel creates a new Model with the given configuration
func NewModel(cfg *config.Config, clients *provider.Clients, sessionStorage *storage.SessionStorage, lastSession *storage.Session, searchIndex *storage.SearchIndex, version string) *Model {
	var messages []Message
	needsRender := false
	if lastSession != nil {
		for _, sMsg := range lastSession.Messages {
			messages = append(messages, Message{
				Role:      sMsg.Role,
				Content:   sMsg.Content,
				Short:     sMsg.Short,
				Rendered:  sMsg.Content,
				Model:     sMsg.Model,
				Timestamp: sMsg.Timestamp,
			})
		}
		needsRender = len(messages) > 0

		// Reseed client histories so the backend sees the restored
		// conversation, not just the few-shot seed.
		if clients != nil {
			clients.ResetHistories(append(config.SeedTurns(), lastSession.Turns()...))
		}
	}

	return &Model{
		Config:             cfg,
		Clients:            clients,
		SessionStorage:     sessionStorage,
		SearchIndex:        searchIndex,
		Messages:           messages,
		CurrentSession:     lastSession,
		Streaming:          false,
		SessionDirty:       false,
		NeedsInitialRender: needsRender,
		Quitting:           false,
		Version:            version,
	}
}

// PreferredIdentity returns the configured model preference.
func (m *Model) PreferredIdentity() assistant.Identity {
	return assistant.Identity(m.Config.PreferredModel)
}

// SetPreferredIdentity updates the preference and persists it. The router
// reads the preference on every prompt, so no client rewiring is needed.
func (m *Model) SetPreferredIdentity(id assistant.Identity) error {
	m.Config.PreferredModel = string(id)
	return m.Config.SaveUser()
}
