package provider

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"linguatui/assistant"
	"linguatui/capability"
)

// Conversation history adapters. Each backend wants the canonical turn
// sequence in its own shape; these conversions are pure and total, and the
// only changes they make are role-label renaming and part flattening.

// ToCapabilityPrompts converts canonical turns into the on-device prompt
// format, renaming the assistant role to "model".
func ToCapabilityPrompts(turns []assistant.Turn) []capability.Prompt {
	result := make([]capability.Prompt, len(turns))
	for i, t := range turns {
		role := capability.RoleUser
		if t.Role == assistant.RoleAssistant {
			role = capability.RoleModel
		}
		result[i] = capability.Prompt{Role: role, Parts: []string{t.Content}}
	}
	return result
}

// FromCapabilityPrompts maps on-device prompts back to canonical turns.
// Multi-part content is flattened into a single text block with newlines.
func FromCapabilityPrompts(prompts []capability.Prompt) []assistant.Turn {
	result := make([]assistant.Turn, len(prompts))
	for i, p := range prompts {
		role := assistant.RoleUser
		if p.Role == capability.RoleModel {
			role = assistant.RoleAssistant
		}
		result[i] = assistant.Turn{Role: role, Content: strings.Join(p.Parts, "\n")}
	}
	return result
}

// ToOllamaMessages converts canonical turns to the ollama wire format.
func ToOllamaMessages(turns []assistant.Turn) []api.Message {
	result := make([]api.Message, len(turns))
	for i, t := range turns {
		result[i] = api.Message{Role: string(t.Role), Content: t.Content}
	}
	return result
}

// FromOllamaMessages maps ollama messages back to canonical turns.
func FromOllamaMessages(messages []api.Message) []assistant.Turn {
	result := make([]assistant.Turn, len(messages))
	for i, m := range messages {
		role := assistant.RoleUser
		if m.Role == "assistant" {
			role = assistant.RoleAssistant
		}
		result[i] = assistant.Turn{Role: role, Content: m.Content}
	}
	return result
}

// ToOpenAIMessages converts canonical turns to the OpenAI-compatible
// message union used by the cloud flash client.
func ToOpenAIMessages(turns []assistant.Turn) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(turns))
	for i, t := range turns {
		switch t.Role {
		case assistant.RoleAssistant:
			result[i] = openai.AssistantMessage(t.Content)
		default:
			result[i] = openai.UserMessage(t.Content)
		}
	}
	return result
}

// ToAnthropicMessages converts canonical turns to Anthropic message params.
func ToAnthropicMessages(turns []assistant.Turn) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, len(turns))
	for i, t := range turns {
		switch t.Role {
		case assistant.RoleAssistant:
			result[i] = anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content))
		default:
			result[i] = anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content))
		}
	}
	return result
}
