package ui

import (
	"linguatui/model"
)

// Message type alias so rendering code reads naturally
type Message = model.Message

// Message type aliases - these are defined in the model package
type streamDeltaMsg = model.StreamDeltaMsg
type streamDoneMsg = model.StreamDoneMsg
type streamErrorMsg = model.StreamErrorMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
type serverModelsMsg = model.ServerModelsMsg
type availabilityTickMsg = model.AvailabilityTickMsg
type sessionsListMsg = model.SessionsListMsg
type sessionLoadedMsg = model.SessionLoadedMsg
type sessionSavedMsg = model.SessionSavedMsg
type sessionRenamedMsg = model.SessionRenamedMsg
type sessionExportedMsg = model.SessionExportedMsg
type globalSearchMsg = model.GlobalSearchMsg
type flashTickMsg = model.FlashTickMsg

type SettingFieldType int

const (
	SettingTypeText SettingFieldType = iota
	SettingTypeSecret
	SettingTypeToggle
	SettingTypeChoice
)

type SettingField struct {
	Label   string
	Key     string
	Value   string
	Type    SettingFieldType
	Choices []string
}
