package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"linguatui/assistant"
	"linguatui/config"
)

// Setting keys, matched in applySetting.
const (
	settingPreferredModel = "preferred_model"
	settingInputLanguage  = "input_language"
	settingRuntimeHost    = "runtime_host"
	settingRuntimeModel   = "runtime_model"
	settingServerURL      = "server_url"
	settingServerModel    = "server_model"
	settingServerStream   = "server_stream"
	settingFlashModel     = "flash_model"
	settingClaudeModel    = "claude_model"
	settingGeminiKey      = "gemini_key"
	settingAnthropicKey   = "anthropic_key"
	settingSystemPrompt   = "system_prompt"
)

func (a *AppView) buildSettingsFields() []SettingField {
	cfg := a.dataModel.Config

	identities := make([]string, 0, len(assistant.Identities()))
	for _, id := range assistant.Identities() {
		identities = append(identities, string(id))
	}

	geminiKey := ""
	anthropicKey := ""
	if cfg.CredentialStore != nil {
		geminiKey = cfg.CredentialStore.Get(config.CredentialGemini)
		anthropicKey = cfg.CredentialStore.Get(config.CredentialAnthropic)
	}

	return []SettingField{
		{Label: "Preferred model", Key: settingPreferredModel, Value: cfg.PreferredModel, Type: SettingTypeChoice, Choices: identities},
		{Label: "Input language", Key: settingInputLanguage, Value: cfg.InputLanguage, Type: SettingTypeChoice, Choices: []string{"en", "es"}},
		{Label: "Runtime host", Key: settingRuntimeHost, Value: cfg.Runtime.Host, Type: SettingTypeText},
		{Label: "Runtime model", Key: settingRuntimeModel, Value: cfg.Runtime.Model, Type: SettingTypeText},
		{Label: "Server URL", Key: settingServerURL, Value: cfg.Server.URL, Type: SettingTypeText},
		{Label: "Server model", Key: settingServerModel, Value: cfg.Server.Model, Type: SettingTypeText},
		{Label: "Server streaming", Key: settingServerStream, Value: fmt.Sprintf("%t", cfg.Server.Stream), Type: SettingTypeToggle},
		{Label: "Gemini model", Key: settingFlashModel, Value: cfg.Cloud.FlashModel, Type: SettingTypeText},
		{Label: "Claude model", Key: settingClaudeModel, Value: cfg.Cloud.ClaudeModel, Type: SettingTypeText},
		{Label: "Gemini API key", Key: settingGeminiKey, Value: geminiKey, Type: SettingTypeSecret},
		{Label: "Anthropic API key", Key: settingAnthropicKey, Value: anthropicKey, Type: SettingTypeSecret},
		{Label: "System prompt", Key: settingSystemPrompt, Value: cfg.SystemPrompt, Type: SettingTypeText},
	}
}

func (a *AppView) openSettings() {
	a.settingsFields = a.buildSettingsFields()
	a.selectedSettingIdx = 0
	a.settingsEditMode = false
	a.settingsHasChanges = false
	a.settingsSaveError = ""
	a.settingsNotice = ""
	a.showSettings = true
}

// applySetting commits one edited value: config field, credential store
// and the live client it drives. The runtime host and model are the one
// pair that cannot be rebuilt in place (the tracker owns a running
// download lifecycle), so those edits raise a restart notice instead.
func (a *AppView) applySetting(field SettingField, value string) error {
	cfg := a.dataModel.Config
	clients := a.dataModel.Clients
	a.settingsNotice = ""

	switch field.Key {
	case settingPreferredModel:
		cfg.PreferredModel = value
	case settingInputLanguage:
		cfg.InputLanguage = value
	case settingRuntimeHost:
		cfg.Runtime.Host = value
		a.settingsNotice = "Saved, applies after restart"
	case settingRuntimeModel:
		cfg.Runtime.Model = value
		a.settingsNotice = "Saved, applies after restart"
	case settingServerURL:
		if clients.SelfHosted != nil {
			if err := clients.SelfHosted.SetURL(value); err != nil {
				return err
			}
		}
		cfg.Server.URL = value
	case settingServerModel:
		cfg.Server.Model = value
		if clients.SelfHosted != nil {
			clients.SelfHosted.SetModel(value)
		}
	case settingServerStream:
		cfg.Server.Stream = value == "true"
		if clients.SelfHosted != nil {
			clients.SelfHosted.SetStream(value == "true")
		}
	case settingFlashModel:
		cfg.Cloud.FlashModel = value
		if clients.CloudFlash != nil {
			clients.CloudFlash.SetModel(value)
		}
	case settingClaudeModel:
		cfg.Cloud.ClaudeModel = value
		if clients.Claude != nil {
			clients.Claude.SetModel(value)
		}
	case settingSystemPrompt:
		cfg.SystemPrompt = value

	case settingGeminiKey:
		if cfg.CredentialStore != nil {
			cfg.CredentialStore.Set(config.CredentialGemini, value)
			if err := cfg.CredentialStore.Save(cfg.DataDir()); err != nil {
				return err
			}
		}
		if clients.CloudFlash != nil {
			clients.CloudFlash.SetCredential(value)
		}
		return nil

	case settingAnthropicKey:
		if cfg.CredentialStore != nil {
			cfg.CredentialStore.Set(config.CredentialAnthropic, value)
			if err := cfg.CredentialStore.Save(cfg.DataDir()); err != nil {
				return err
			}
		}
		if clients.Claude != nil {
			clients.Claude.SetCredential(value)
		}
		return nil
	}

	return cfg.SaveUser()
}

func (a AppView) handleSettingsKeys(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if a.settingsEditMode {
		switch msg.String() {
		case "esc":
			a.settingsEditMode = false
			a.settingsEditInput.Blur()
			return a, nil
		case "enter":
			field := a.settingsFields[a.selectedSettingIdx]
			value := a.settingsEditInput.Value()
			a.settingsEditMode = false
			a.settingsEditInput.Blur()

			if err := a.applySetting(field, value); err != nil {
				a.settingsSaveError = err.Error()
				return a, nil
			}
			a.settingsSaveError = ""
			a.settingsHasChanges = true
			a.settingsFields = a.buildSettingsFields()
			return a, nil
		}
		var cmd tea.Cmd
		a.settingsEditInput, cmd = a.settingsEditInput.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "esc", "alt+o":
		a.showSettings = false
		return a, nil
	case "j", "down":
		if a.selectedSettingIdx < len(a.settingsFields)-1 {
			a.selectedSettingIdx++
		}
		return a, nil
	case "k", "up":
		if a.selectedSettingIdx > 0 {
			a.selectedSettingIdx--
		}
		return a, nil
	case "enter":
		field := a.settingsFields[a.selectedSettingIdx]

		switch field.Type {
		case SettingTypeToggle:
			value := "true"
			if field.Value == "true" {
				value = "false"
			}
			if err := a.applySetting(field, value); err != nil {
				a.settingsSaveError = err.Error()
				return a, nil
			}
			a.settingsSaveError = ""
			a.settingsFields = a.buildSettingsFields()
			return a, nil

		case SettingTypeChoice:
			next := nextChoice(field.Choices, field.Value)
			if err := a.applySetting(field, next); err != nil {
				a.settingsSaveError = err.Error()
				return a, nil
			}
			a.settingsSaveError = ""
			a.settingsFields = a.buildSettingsFields()
			return a, nil

		default:
			a.settingsEditMode = true
			a.settingsEditInput.SetValue(field.Value)
			a.settingsEditInput.Focus()
			return a, textinput.Blink
		}
	}

	return a, nil
}

func nextChoice(choices []string, current string) string {
	if len(choices) == 0 {
		return current
	}
	for i, c := range choices {
		if c == current {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

func renderSettings(fields []SettingField, selectedIdx int, editMode bool, editInput textinput.Model, hasChanges bool, saveError, notice string, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Settings")

	var header string
	switch {
	case saveError != "":
		header = ErrorStyle.Render(saveError)
	case editMode:
		header = editInput.View()
	case notice != "":
		header = SelectedStyle.Render(notice)
	case hasChanges:
		header = SelectedStyle.Render("Saved")
	default:
		header = "Enter edits or cycles a value"
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
	for i, field := range fields {
		indicator := "  "
		if i == selectedIdx {
			indicator = "▶ "
		}

		value := field.Value
		if field.Type == SettingTypeSecret && value != "" {
			value = strings.Repeat("*", 8)
		}
		value = runewidth.Truncate(value, modalWidth-30, "...")

		spacing := modalWidth - runewidth.StringWidth(indicator+field.Label+value) - 4
		if spacing < 1 {
			spacing = 1
		}

		line := fmt.Sprintf("%s%s%s%s", indicator, field.Label, strings.Repeat(" ", spacing), value)

		lineStyle := lipgloss.NewStyle()
		if i == selectedIdx {
			lineStyle = lineStyle.Foreground(successColor).Bold(true)
		}

		lines = append(lines, lipgloss.NewStyle().
			Width(modalWidth).
			Render(lineStyle.Render(line)))
	}

	footerText := FormatFooter("j/k", "Navigate", "Enter", "Edit", "Esc", "Close")
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

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n"))
}
