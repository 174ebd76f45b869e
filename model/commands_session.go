package model

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"linguatui/config"
	"linguatui/storage"
)

// FetchSessionList retrieves the list of saved sessions
func (m *Model) FetchSessionList() tea.Cmd {
	if m.SessionStorage == nil {
		return nil
	}
	store := m.SessionStorage
	return func() tea.Msg {
		sessions, err := store.List()
		return SessionsListMsg{
			Sessions: sessions,
			Err:      err,
		}
	}
}

// LoadSession loads a session by ID
func (m *Model) LoadSession(sessionID string) tea.Cmd {
	if m.SessionStorage == nil {
		return nil
	}

	if m.CurrentSession != nil && m.CurrentSession.ID == sessionID {
		// Already loaded, just close the session manager
		session := m.CurrentSession
		return func() tea.Msg {
			return SessionLoadedMsg{Session: session}
		}
	}

	store := m.SessionStorage
	return func() tea.Msg {
		session, err := store.Load(sessionID)
		return SessionLoadedMsg{
			Session: session,
			Err:     err,
		}
	}
}

// SaveCurrentSession saves the current session to storage
func (m *Model) SaveCurrentSession() tea.Cmd {
	if m.SessionStorage == nil || m.CurrentSession == nil {
		return nil
	}

	var sessionMessages []storage.Message
	for _, msg := range m.Messages {
		if msg.Role == "user" || msg.Role == "assistant" {
			sessionMessages = append(sessionMessages, storage.Message{
				Role:      msg.Role,
				Content:   msg.Content,
				Short:     msg.Short,
				Model:     msg.Model,
				Timestamp: msg.Timestamp,
			})
		}
	}

	m.CurrentSession.Messages = sessionMessages
	m.CurrentSession.UpdatedAt = time.Now()
	m.CurrentSession.Model = m.Config.PreferredModel
	m.CurrentSession.InputLanguage = m.Config.InputLanguage

	session := m.CurrentSession
	store := m.SessionStorage
	index := m.SearchIndex

	return func() tea.Msg {
		err := store.Save(session)
		if err == nil {
			store.SaveCurrentSessionID(session.ID)
			if index != nil {
				if ierr := index.IndexSession(session); ierr != nil && config.DebugLog != nil {
					config.DebugLog.Printf("[Model] search index update failed: %v", ierr)
				}
			}
		}
		return SessionSavedMsg{Err: err}
	}
}

// AutoSaveSession saves the current session, creating it with a generated
// name from the first user message if it does not exist yet.
func (m *Model) AutoSaveSession() tea.Cmd {
	if m.SessionStorage == nil {
		return nil
	}

	if m.CurrentSession == nil {
		name := ""
		for _, msg := range m.Messages {
			if msg.Role == "user" {
				name = msg.DisplayText()
				break
			}
		}
		m.CurrentSession = &storage.Session{
			Name: storage.GenerateSessionName(name),
		}
	}

	return m.SaveCurrentSession()
}

// CreateNewSession starts a fresh conversation: new session, cleared
// messages, reseeded client histories.
func (m *Model) CreateNewSession(name string) {
	if name == "" {
		name = storage.GenerateSessionName("")
	}
	m.CurrentSession = &storage.Session{Name: name}
	m.Messages = nil
	m.SessionDirty = false

	if m.Clients != nil {
		m.Clients.ResetHistories(config.SeedTurns())
	}
}

// DeleteSession removes a session and its index entries
func (m *Model) DeleteSession(sessionID string) tea.Cmd {
	store := m.SessionStorage
	index := m.SearchIndex
	return func() tea.Msg {
		if err := store.Delete(sessionID); err != nil {
			return SessionsListMsg{Err: err}
		}
		if index != nil {
			_ = index.RemoveSession(sessionID)
		}
		sessions, err := store.List()
		return SessionsListMsg{Sessions: sessions, Err: err}
	}
}

// RenameSession renames a stored session
func (m *Model) RenameSession(sessionID, newName string) tea.Cmd {
	store := m.SessionStorage
	return func() tea.Msg {
		err := store.RenameSession(sessionID, newName)
		return SessionRenamedMsg{Err: err}
	}
}

// ExportSession writes a session to a JSON file
func (m *Model) ExportSession(sessionID, path string) tea.Cmd {
	store := m.SessionStorage
	return func() tea.Msg {
		err := store.ExportToJSON(sessionID, path)
		return SessionExportedMsg{Path: path, Err: err}
	}
}
