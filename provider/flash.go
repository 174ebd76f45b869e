package provider

import (
	"context"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"linguatui/assistant"
)

const (
	// Gemini's OpenAI-compatible endpoint.
	defaultFlashBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultFlashModel   = "gemini-1.5-flash"
)

// CloudFlash implements assistant.Client over the Gemini Flash API through
// its OpenAI-compatible endpoint. The chat session is client-side: the
// client owns its history, sends it whole on every call, and relays the
// provider's token stream 1:1.
//
// The session's constructing inputs are the credential and the initial
// history; SetCredential and ResetHistory rebuild it when either changes.
type CloudFlash struct {
	baseURL string
	system  string

	mu      sync.Mutex
	model   string
	apiKey  string
	client  openai.Client
	initial []assistant.Turn
	turns   []assistant.Turn
}

// NewCloudFlash creates the cloud flash client. An empty apiKey is allowed;
// prompting without one reports a credential error before any network call.
func NewCloudFlash(baseURL, apiKey, model, system string, initial []assistant.Turn) *CloudFlash {
	if baseURL == "" {
		baseURL = defaultFlashBaseURL
	}
	if model == "" {
		model = defaultFlashModel
	}
	c := &CloudFlash{
		baseURL: baseURL,
		model:   model,
		system:  system,
		apiKey:  apiKey,
		initial: cloneTurns(initial),
	}
	c.rebuild()
	return c
}

// rebuild recreates the chat handle and resets client-side history.
// Callers hold c.mu (or have exclusive access during construction).
func (c *CloudFlash) rebuild() {
	c.turns = cloneTurns(c.initial)
	if c.apiKey != "" {
		c.client = openai.NewClient(
			option.WithBaseURL(c.baseURL),
			option.WithAPIKey(c.apiKey),
		)
	}
}

// SetCredential replaces the API key and rebuilds the session.
func (c *CloudFlash) SetCredential(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if apiKey == c.apiKey {
		return
	}
	c.apiKey = apiKey
	c.rebuild()
}

// ResetHistory replaces the initial conversation and rebuilds the session.
func (c *CloudFlash) ResetHistory(initial []assistant.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initial = cloneTurns(initial)
	c.rebuild()
}

// Model returns the model used for prompts.
func (c *CloudFlash) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SetModel changes the model for subsequent prompts.
func (c *CloudFlash) SetModel(model string) {
	if model == "" {
		model = defaultFlashModel
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

// Identity implements assistant.Client.
func (c *CloudFlash) Identity() assistant.Identity {
	return assistant.IdentityCloudFlash
}

// Prompt implements assistant.Client.
func (c *CloudFlash) Prompt(ctx context.Context, input string, cb assistant.StreamCallback) error {
	c.mu.Lock()
	if c.apiKey == "" {
		c.mu.Unlock()
		return assistant.NewError(assistant.KindMissingCredential,
			"Missing API key",
			"Add your Gemini API key in settings before using the cloud model.")
	}
	client := c.client
	model := c.model
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(c.turns)+2)
	if c.system != "" {
		messages = append(messages, openai.SystemMessage(c.system))
	}
	messages = append(messages, ToOpenAIMessages(c.turns)...)
	messages = append(messages, openai.UserMessage(input))
	c.mu.Unlock()

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(model),
	}

	stream := client.Chat.Completions.NewStreaming(ctx, params)
	var reply strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		reply.WriteString(content)
		if err := cb(assistant.Delta{Text: content, Model: assistant.IdentityCloudFlash}); err != nil {
			return err
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

func cloneTurns(turns []assistant.Turn) []assistant.Turn {
	cloned := make([]assistant.Turn, len(turns))
	copy(cloned, turns)
	return cloned
}
