package config

import "linguatui/assistant"

// DefaultSystemConfig returns the system-level defaults.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/linguatui",
	}
}

// DefaultUserConfig returns the user-level defaults.
func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Runtime: RuntimeConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2:latest",
		},
		Server: ServerConfig{
			URL:    "http://localhost:11434",
			Stream: true,
		},
		Cloud: CloudConfig{
			FlashModel: "gemini-1.5-flash",
		},
		PreferredModel:   string(assistant.IdentityOnDevice),
		InputLanguage:    string(assistant.LanguageEnglish),
		SystemPrompt:     DefaultSystemPrompt,
		CredentialMethod: string(CredentialPlainText),
	}
}

// DefaultSystemPrompt frames every backend as a vocabulary helper.
const DefaultSystemPrompt = "You are a concise Spanish vocabulary helper. " +
	"When given a word or phrase, explain its meaning, part of speech and " +
	"conjugation in short markdown. Answer follow-up questions briefly."

// SeedTurns returns the few-shot conversation that seeds every provider's
// initial history so answers come back in the expected compact format.
func SeedTurns() []assistant.Turn {
	return []assistant.Turn{
		{Role: assistant.RoleUser, Content: "sabía"},
		{Role: assistant.RoleAssistant, Content: "**sabía** I was knowing: Imperfect *yo* conjugation of **saber**.\n\n" +
			"**sabía** he/she was knowing, you were knowing: Imperfect *él/ella/usted* conjugation of **saber**.\n\n" +
			"**sabia** wise. Feminine singular of **sabio**."},
		{Role: assistant.RoleUser, Content: "frontera"},
		{Role: assistant.RoleAssistant, Content: "**frontera**: border. *Feminine noun*"},
		{Role: assistant.RoleUser, Content: "chévere"},
		{Role: assistant.RoleAssistant, Content: "**chévere**: great. *Adjective* (colloquial, extremely good, Latin America)"},
	}
}
