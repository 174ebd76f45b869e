package assistant

import (
	"fmt"
	"strings"
)

// InputLanguage is the persisted code for the language the user types in.
type InputLanguage string

const (
	LanguageEnglish InputLanguage = "en"
	LanguageSpanish InputLanguage = "es"
)

// DisplayName returns the human name for a language code. Unknown codes are
// returned unchanged so a stale preference still renders something.
func (l InputLanguage) DisplayName() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageSpanish:
		return "Spanish"
	}
	return string(l)
}

// Opposite returns the translation target for a detected input language.
func (l InputLanguage) Opposite() InputLanguage {
	if l == LanguageEnglish {
		return LanguageSpanish
	}
	return LanguageEnglish
}

// DetectInputLanguage inspects the "!en" / "!es" prefix convention and
// returns the declared language plus the input with the prefix stripped.
// ok is false when no prefix is present.
func DetectInputLanguage(input string) (lang InputLanguage, stripped string, ok bool) {
	trimmed := strings.TrimSpace(input)
	switch {
	case strings.HasPrefix(trimmed, "!en"):
		lang = LanguageEnglish
	case strings.HasPrefix(trimmed, "!es"):
		lang = LanguageSpanish
	default:
		return "", input, false
	}
	stripped = strings.TrimSpace(trimmed[3:])
	return lang, stripped, true
}

// BuildTranslationPrompt produces the pending prompt for a translation
// request: the full text is the instruction sent to the model, the short
// text is what the conversation shows for the user turn.
func BuildTranslationPrompt(text string, target InputLanguage) PendingPrompt {
	return PendingPrompt{
		Full:  fmt.Sprintf("Translate %q to %s", text, target.DisplayName()),
		Short: text,
	}
}

// BuildExplanationPrompt produces the pending prompt for the default
// explain-this-selection action.
func BuildExplanationPrompt(selection string) PendingPrompt {
	return PendingPrompt{Full: selection}
}
