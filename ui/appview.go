package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"linguatui/assistant"
	"linguatui/capability"
	"linguatui/config"
	appmodel "linguatui/model"
	"linguatui/provider"
	"linguatui/storage"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Streaming UI state
	currentResp *strings.Builder // Pointer to avoid copy panic
	streamModel string
	showHelp    bool

	// Loading spinner (bubbles/spinner)
	loadingSpinner spinner.Model

	// Selection passed on the command line, sent once the window is ready
	pendingSelection string

	// Model selector
	showModelSelector    bool
	modelEntries         []modelEntry
	selectedModelIdx     int
	modelFilterMode      bool
	modelFilterInput     textinput.Model
	filteredModelEntries []modelEntry
	serverModels         []string

	// Session management UI
	showSessionManager   bool
	sessionList          []storage.SessionMetadata
	selectedSessionIdx   int
	sessionRenameMode    bool
	sessionRenameInput   textinput.Model
	sessionFilterMode    bool
	sessionFilterInput   textinput.Model
	filteredSessionList  []storage.SessionMetadata
	sessionExportMode    bool
	sessionExportInput   textinput.Model
	confirmDeleteSession *storage.SessionMetadata

	// Settings modal
	showSettings       bool
	settingsFields     []SettingField
	selectedSettingIdx int
	settingsEditMode   bool
	settingsEditInput  textinput.Model
	settingsHasChanges bool
	settingsSaveError  string
	settingsNotice     string

	// Search
	showMessageSearch    bool
	messageSearchInput   textinput.Model
	messageSearchResults []storage.MessageMatch
	selectedSearchIdx    int

	showGlobalSearch    bool
	globalSearchInput   textinput.Model
	globalSearchResults []storage.SessionMessageMatch
	selectedGlobalIdx   int

	// Flash notification shown in the status line
	flashMessage string
	flashIsError bool
	flashTicks   int
}

// NewAppView wires the full application: clients, storage and the data
// model. selection is the optional command line text to look up on start.
func NewAppView(cfg *config.Config, clients *provider.Clients, sessionStorage *storage.SessionStorage, searchIndex *storage.SearchIndex, lastSession *storage.Session, selection, version string) AppView {
	ta := textarea.New()
	ta.Placeholder = "Type a word or phrase, !en/!es prefix to translate..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, plain Enter sends (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	sessionFilterInput := textinput.New()
	sessionFilterInput.Prompt = "Filter: "
	sessionFilterInput.CharLimit = 64

	sessionRenameInput := textinput.New()
	sessionRenameInput.Prompt = "Name: "
	sessionRenameInput.CharLimit = 64

	sessionExportInput := textinput.New()
	sessionExportInput.Prompt = "Path: "
	sessionExportInput.CharLimit = 256

	modelFilterInput := textinput.New()
	modelFilterInput.Prompt = "Filter: "
	modelFilterInput.CharLimit = 64

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	globalSearchInput := textinput.New()
	globalSearchInput.Prompt = "Search all: "
	globalSearchInput.CharLimit = 100

	settingsEditInput := textinput.New()
	settingsEditInput.CharLimit = 512

	dataModel := appmodel.NewModel(cfg, clients, sessionStorage, lastSession, searchIndex, version)

	return AppView{
		dataModel:          dataModel,
		textarea:           ta,
		viewport:           vp,
		currentResp:        &strings.Builder{},
		loadingSpinner:     sp,
		pendingSelection:   selection,
		modelFilterInput:   modelFilterInput,
		sessionFilterInput: sessionFilterInput,
		sessionRenameInput: sessionRenameInput,
		sessionExportInput: sessionExportInput,
		messageSearchInput: messageSearchInput,
		globalSearchInput:  globalSearchInput,
		settingsEditInput:  settingsEditInput,
	}
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		a.dataModel.FetchServerModels(),
	}
	if cmd := a.dataModel.WatchAvailability(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading LinguaTUI..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Help (always on top)
	// 2. Model selector
	// 3. Settings
	// 4. Session manager
	// 5. Search modals

	if a.showHelp {
		return renderHelpModal(a.width, a.height)
	}

	if a.showModelSelector {
		return renderModelSelector(a.getModelEntries(), a.selectedModelIdx, a.dataModel.PreferredIdentity(), a.modelFilterMode, a.modelFilterInput, a.width, a.height)
	}

	if a.showSettings {
		return renderSettings(a.settingsFields, a.selectedSettingIdx, a.settingsEditMode, a.settingsEditInput, a.settingsHasChanges, a.settingsSaveError, a.settingsNotice, a.width, a.height)
	}

	if a.showSessionManager {
		currentSessionID := ""
		if a.dataModel.CurrentSession != nil {
			currentSessionID = a.dataModel.CurrentSession.ID
		}
		return renderSessionManager(a.getSessionList(), a.selectedSessionIdx, currentSessionID, a.sessionRenameMode, a.sessionRenameInput, a.sessionExportMode, a.sessionExportInput, a.confirmDeleteSession, a.sessionFilterMode, a.sessionFilterInput, a.width, a.height)
	}

	if a.showGlobalSearch {
		return renderGlobalSearch(a.globalSearchInput, a.globalSearchResults, a.selectedGlobalIdx, a.width, a.height)
	}

	if a.showMessageSearch {
		return renderMessageSearch(a.messageSearchInput, a.messageSearchResults, a.selectedSearchIdx, a.width, a.height)
	}

	// Title bar - "LinguaTUI - backend - session name"
	appText := AssistantStyle.Render("LinguaTUI " + a.dataModel.Version)
	modelText := TitleStyle.Render(fmt.Sprintf(" - %s", a.backendLabel()))
	sessionName := "New Session"
	if a.dataModel.CurrentSession != nil && a.dataModel.CurrentSession.Name != "" {
		sessionName = a.dataModel.CurrentSession.Name
	}
	sessionText := UserStyle.Render(fmt.Sprintf(" - %s", sessionName))
	langText := DimStyle.Render(fmt.Sprintf(" | %s", assistant.InputLanguage(a.dataModel.Config.InputLanguage).DisplayName()))

	title := appText + modelText + sessionText + langText

	viewportView := a.viewport.View()
	inputView := a.textarea.View()

	statusBar := a.renderStatusLine()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		viewportView,
		inputView,
		statusBar,
	)
}

func (a AppView) renderStatusLine() string {
	if a.flashMessage != "" {
		if a.flashIsError {
			return ErrorStyle.Render(a.flashMessage)
		}
		return SelectedStyle.Render(a.flashMessage)
	}

	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBar := fmt.Sprintf("Alt+Q %s  Alt+N %s  Alt+S %s  Alt+M %s  Alt+O %s  Alt+F %s  Enter %s  Alt+Y %s",
		descStyle.Render("Quit"),
		descStyle.Render("New"),
		descStyle.Render("Sessions"),
		descStyle.Render("Models"),
		descStyle.Render("Settings"),
		descStyle.Render("Search"),
		descStyle.Render("Send"),
		descStyle.Render("Copy"),
	)
	return StatusStyle.Render(statusBar)
}

// backendLabel names the preferred backend for the title bar, with the
// on-device availability state while it matters.
func (a AppView) backendLabel() string {
	id := a.dataModel.PreferredIdentity()
	label := string(id)

	if id == assistant.IdentityOnDevice && a.dataModel.Clients.Tracker != nil {
		state := a.dataModel.Clients.Tracker.State()
		if state != capability.StateReady {
			label = fmt.Sprintf("%s (%s)", label, state)
		}
	}
	if id == assistant.IdentitySelfHosted && a.dataModel.Clients.SelfHosted != nil {
		if m := a.dataModel.Clients.SelfHosted.Model(); m != "" {
			label = fmt.Sprintf("%s: %s", label, m)
		}
	}
	return label
}

func (a AppView) getSessionList() []storage.SessionMetadata {
	if a.sessionFilterMode && len(a.filteredSessionList) > 0 {
		return a.filteredSessionList
	}
	return a.sessionList
}

func (a AppView) getModelEntries() []modelEntry {
	if a.modelFilterMode && len(a.filteredModelEntries) > 0 {
		return a.filteredModelEntries
	}
	return a.modelEntries
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showSessionManager = false
	a.showModelSelector = false
	a.showMessageSearch = false
	a.showGlobalSearch = false
	a.showSettings = false

	a.sessionRenameMode = false
	a.sessionExportMode = false
	a.sessionFilterMode = false
	a.confirmDeleteSession = nil
	a.modelFilterMode = false
	a.settingsEditMode = false

	for _, input := range []*textinput.Model{
		&a.sessionRenameInput, &a.sessionExportInput, &a.sessionFilterInput,
		&a.modelFilterInput, &a.messageSearchInput, &a.globalSearchInput,
		&a.settingsEditInput,
	} {
		if input.Focused() {
			input.Blur()
		}
	}
}

func (a *AppView) flash(message string, isError bool) tea.Cmd {
	a.flashMessage = message
	a.flashIsError = isError
	a.flashTicks++
	return flashClearCmd()
}
