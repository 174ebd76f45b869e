package provider

import (
	"testing"

	"github.com/ollama/ollama/api"

	"linguatui/assistant"
	"linguatui/capability"
)

func TestToCapabilityPrompts(t *testing.T) {
	turns := []assistant.Turn{
		{Role: assistant.RoleUser, Content: "frontera"},
		{Role: assistant.RoleAssistant, Content: "border, frontier"},
	}

	prompts := ToCapabilityPrompts(turns)
	if len(prompts) != 2 {
		t.Fatalf("got %d prompts, want 2", len(prompts))
	}
	if prompts[0].Role != capability.RoleUser {
		t.Errorf("prompts[0].Role = %q, want %q", prompts[0].Role, capability.RoleUser)
	}
	if prompts[1].Role != capability.RoleModel {
		t.Errorf("prompts[1].Role = %q, want %q", prompts[1].Role, capability.RoleModel)
	}
	if len(prompts[1].Parts) != 1 || prompts[1].Parts[0] != "border, frontier" {
		t.Errorf("prompts[1].Parts = %v", prompts[1].Parts)
	}
}

func TestFromCapabilityPromptsFlattensParts(t *testing.T) {
	prompts := []capability.Prompt{
		{Role: capability.RoleModel, Parts: []string{"line one", "line two"}},
	}

	turns := FromCapabilityPrompts(prompts)
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(turns))
	}
	if turns[0].Role != assistant.RoleAssistant {
		t.Errorf("Role = %q, want %q", turns[0].Role, assistant.RoleAssistant)
	}
	if turns[0].Content != "line one\nline two" {
		t.Errorf("Content = %q", turns[0].Content)
	}
}

func TestCapabilityPromptRoundTrip(t *testing.T) {
	turns := []assistant.Turn{
		{Role: assistant.RoleUser, Content: "hola"},
		{Role: assistant.RoleAssistant, Content: "hello"},
		{Role: assistant.RoleUser, Content: "adios"},
	}

	got := FromCapabilityPrompts(ToCapabilityPrompts(turns))
	if len(got) != len(turns) {
		t.Fatalf("got %d turns, want %d", len(got), len(turns))
	}
	for i := range turns {
		if got[i].Role != turns[i].Role || got[i].Content != turns[i].Content {
			t.Errorf("turn[%d] = %+v, want %+v", i, got[i], turns[i])
		}
	}
}

func TestOllamaMessageRoundTrip(t *testing.T) {
	turns := []assistant.Turn{
		{Role: assistant.RoleUser, Content: "que significa frontera"},
		{Role: assistant.RoleAssistant, Content: "It means border."},
	}

	messages := ToOllamaMessages(turns)
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Errorf("roles = %q, %q", messages[0].Role, messages[1].Role)
	}

	got := FromOllamaMessages(messages)
	for i := range turns {
		if got[i].Role != turns[i].Role || got[i].Content != turns[i].Content {
			t.Errorf("turn[%d] = %+v, want %+v", i, got[i], turns[i])
		}
	}
}

func TestFromOllamaMessagesUnknownRole(t *testing.T) {
	turns := FromOllamaMessages([]api.Message{{Role: "system", Content: "be brief"}})
	if turns[0].Role != assistant.RoleUser {
		t.Errorf("Role = %q, want fallback to %q", turns[0].Role, assistant.RoleUser)
	}
}
