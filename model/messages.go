package model

import (
	"linguatui/assistant"
	"linguatui/storage"
)

type StreamDeltaMsg struct {
	Delta assistant.Delta
}

type StreamDoneMsg struct {
	FullResponse string
	Model        assistant.Identity
}

type StreamErrorMsg struct {
	Err *assistant.Error
}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}

type ServerModelsMsg struct {
	Models []string
	Err    error
}

type AvailabilityTickMsg struct{}

type SessionsListMsg struct {
	Sessions []storage.SessionMetadata
	Err      error
}

type SessionLoadedMsg struct {
	Session *storage.Session
	Err     error
}

type SessionSavedMsg struct {
	Err error
}

type SessionRenamedMsg struct {
	Err error
}

type SessionExportedMsg struct {
	Path string
	Err  error
}

type GlobalSearchMsg struct {
	Matches []storage.SessionMessageMatch
	Err     error
}

type FlashTickMsg struct{}
