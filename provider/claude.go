package provider

import (
	"context"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"linguatui/assistant"
)

const defaultClaudeBaseURL = "https://api.anthropic.com"

// CloudClaude implements assistant.Client over the Anthropic API. Same
// session model as CloudFlash: client-side history, rebuilt whenever the
// credential or the initial conversation changes.
type CloudClaude struct {
	baseURL string
	system  string

	mu      sync.Mutex
	model   anthropic.Model
	apiKey  string
	client  *anthropic.Client
	initial []assistant.Turn
	turns   []assistant.Turn
}

// NewCloudClaude creates the Anthropic-backed cloud client. An empty apiKey
// is allowed; prompting without one reports a credential error.
func NewCloudClaude(baseURL, apiKey, model, system string, initial []assistant.Turn) *CloudClaude {
	if baseURL == "" {
		baseURL = defaultClaudeBaseURL
	}
	m := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		m = anthropic.Model(model)
	}
	c := &CloudClaude{
		baseURL: baseURL,
		model:   m,
		system:  system,
		apiKey:  apiKey,
		initial: cloneTurns(initial),
	}
	c.rebuild()
	return c
}

func (c *CloudClaude) rebuild() {
	c.turns = cloneTurns(c.initial)
	if c.apiKey != "" {
		client := anthropic.NewClient(
			option.WithBaseURL(c.baseURL),
			option.WithAPIKey(c.apiKey),
		)
		c.client = &client
	}
}

// SetCredential replaces the API key and rebuilds the session.
func (c *CloudClaude) SetCredential(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if apiKey == c.apiKey {
		return
	}
	c.apiKey = apiKey
	c.rebuild()
}

// ResetHistory replaces the initial conversation and rebuilds the session.
func (c *CloudClaude) ResetHistory(initial []assistant.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initial = cloneTurns(initial)
	c.rebuild()
}

// Model returns the model used for prompts.
func (c *CloudClaude) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.model)
}

// SetModel changes the model for subsequent prompts. An empty name falls
// back to the default, matching construction.
func (c *CloudClaude) SetModel(model string) {
	m := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		m = anthropic.Model(model)
	}
	c.mu.Lock()
	c.model = m
	c.mu.Unlock()
}

// Identity implements assistant.Client.
func (c *CloudClaude) Identity() assistant.Identity {
	return assistant.IdentityCloudClaude
}

// Prompt implements assistant.Client.
func (c *CloudClaude) Prompt(ctx context.Context, input string, cb assistant.StreamCallback) error {
	c.mu.Lock()
	if c.apiKey == "" {
		c.mu.Unlock()
		return assistant.NewError(assistant.KindMissingCredential,
			"Missing API key",
			"Add your Anthropic API key in settings before using the Claude model.")
	}
	client := c.client
	model := c.model
	turns := cloneTurns(c.turns)
	c.mu.Unlock()

	messages := ToAnthropicMessages(turns)
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(input)))

	params := anthropic.MessageNewParams{
		Model:     model,
		Messages:  messages,
		MaxTokens: 1024,
	}
	if c.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.system}}
	}

	stream := client.Messages.NewStreaming(ctx, params)
	var reply strings.Builder
	for stream.Next() {
		event := stream.Current()
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text == "" {
					continue
				}
				reply.WriteString(deltaVariant.Text)
				if err := cb(assistant.Delta{Text: deltaVariant.Text, Model: assistant.IdentityCloudClaude}); err != nil {
					return err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return assistant.TransportError("Cloud request failed", err)
	}
	if reply.Len() == 0 {
		return assistant.NewError(assistant.KindEmptyResponse,
			"Empty response",
			"The cloud model returned no text.")
	}

	c.mu.Lock()
	c.turns = append(c.turns,
		assistant.Turn{Role: assistant.RoleUser, Content: input},
		assistant.Turn{Role: assistant.RoleAssistant, Content: reply.String()},
	)
	c.mu.Unlock()
	return nil
}
