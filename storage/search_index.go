package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SessionMessageMatch is a search hit across the session archive.
type SessionMessageMatch struct {
	SessionID    string
	SessionName  string
	MessageIndex int
	Role         string
	Content      string
	Preview      string
	Timestamp    time.Time
}

// SearchIndex is a sqlite-backed index over every session's messages so
// cross-session search does not have to load and scan each JSON file.
type SearchIndex struct {
	db *sql.DB
}

// NewSearchIndex opens (or creates) the search database in dataDir.
func NewSearchIndex(dataDir string) (*SearchIndex, error) {
	dbPath := filepath.Join(dataDir, "search.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	si := &SearchIndex{db: db}

	if err := si.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return si, nil
}

func (si *SearchIndex) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		session_id TEXT NOT NULL,
		session_name TEXT NOT NULL,
		message_index INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		PRIMARY KEY (session_id, message_index)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
	`

	_, err := si.db.Exec(schema)
	return err
}

// IndexSession replaces the indexed messages for a session.
func (si *SearchIndex) IndexSession(session *Session) error {
	tx, err := si.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("failed to clear session index: %w", err)
	}

	insert := `
	INSERT INTO messages (session_id, session_name, message_index, role, content, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	for i, msg := range session.Messages {
		if _, err := tx.Exec(insert, session.ID, session.Name, i, msg.Role, msg.Content, msg.Timestamp); err != nil {
			return fmt.Errorf("failed to index message: %w", err)
		}
	}

	return tx.Commit()
}

// RemoveSession drops a deleted session from the index.
func (si *SearchIndex) RemoveSession(sessionID string) error {
	_, err := si.db.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID)
	return err
}

// Rebuild reindexes every session in storage. Used on startup to catch
// sessions written by older versions without an index.
func (si *SearchIndex) Rebuild(storage *SessionStorage) error {
	sessions, err := storage.List()
	if err != nil {
		return err
	}

	for _, meta := range sessions {
		session, err := storage.Load(meta.ID)
		if err != nil {
			continue // Skip corrupted files
		}
		if err := si.IndexSession(session); err != nil {
			return err
		}
	}
	return nil
}

// SearchAllSessions returns every message across all sessions containing
// the query, newest first.
func (si *SearchIndex) SearchAllSessions(query string) ([]SessionMessageMatch, error) {
	if query == "" {
		return []SessionMessageMatch{}, nil
	}

	rows, err := si.db.Query(`
	SELECT session_id, session_name, message_index, role, content, timestamp
	FROM messages
	WHERE content LIKE ? ESCAPE '\'
	ORDER BY timestamp DESC
	`, "%"+escapeLike(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	defer rows.Close()

	var matches []SessionMessageMatch
	for rows.Next() {
		var m SessionMessageMatch
		if err := rows.Scan(&m.SessionID, &m.SessionName, &m.MessageIndex, &m.Role, &m.Content, &m.Timestamp); err != nil {
			continue
		}

		m.Preview = truncateRunes(m.Content, 100)
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func (si *SearchIndex) Close() error {
	if si.db != nil {
		return si.db.Close()
	}
	return nil
}
