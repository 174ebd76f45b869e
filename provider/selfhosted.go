package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/ollama/ollama/api"

	"linguatui/assistant"
)

// SelfHosted implements assistant.Client over an ollama-protocol chat
// server at a configured URL. The remote is stateless: every prompt
// re-sends the full adapted history plus the new input as one request.
// Streaming and single-shot response modes are both supported; in either
// mode the server's chunks are emitted as deltas exactly as received.
type SelfHosted struct {
	system string

	mu      sync.Mutex
	client  *api.Client
	baseURL string
	stream  bool
	model   string
	turns   []assistant.Turn
}

// NewSelfHosted creates the self-hosted client. An empty model name is
// allowed; prompting without one reports a configuration error before any
// network call is attempted.
func NewSelfHosted(baseURL, model, system string, stream bool, initial []assistant.Turn) (*SelfHosted, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	return &SelfHosted{
		client:  api.NewClient(parsed, http.DefaultClient),
		baseURL: baseURL,
		system:  system,
		stream:  stream,
		model:   model,
		turns:   cloneTurns(initial),
	}, nil
}

// Identity implements assistant.Client.
func (c *SelfHosted) Identity() assistant.Identity {
	return assistant.IdentitySelfHosted
}

// Model returns the currently configured model name.
func (c *SelfHosted) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SetModel changes the model for subsequent prompts.
func (c *SelfHosted) SetModel(model string) {
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

// URL returns the currently configured server URL.
func (c *SelfHosted) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURL
}

// SetURL points the client at a different server. The underlying HTTP
// client is rebuilt so the change takes effect on the next call.
func (c *SelfHosted) SetURL(baseURL string) error {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	c.mu.Lock()
	c.client = api.NewClient(parsed, http.DefaultClient)
	c.baseURL = baseURL
	c.mu.Unlock()
	return nil
}

// SetStream switches between streaming and single-shot response modes.
func (c *SelfHosted) SetStream(stream bool) {
	c.mu.Lock()
	c.stream = stream
	c.mu.Unlock()
}

// ResetHistory replaces the client-side conversation.
func (c *SelfHosted) ResetHistory(initial []assistant.Turn) {
	c.mu.Lock()
	c.turns = cloneTurns(initial)
	c.mu.Unlock()
}

// ListModels returns the names of the models the server offers.
func (c *SelfHosted) ListModels(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	resp, err := client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	names := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		names[i] = m.Name
	}
	return names, nil
}

// Prompt implements assistant.Client.
func (c *SelfHosted) Prompt(ctx context.Context, input string, cb assistant.StreamCallback) error {
	c.mu.Lock()
	client := c.client
	baseURL := c.baseURL
	stream := c.stream
	model := c.model
	turns := cloneTurns(c.turns)
	c.mu.Unlock()

	if model == "" {
		return assistant.NewError(assistant.KindMissingModelConfig,
			"No model configured",
			"Set the self-hosted model name in settings before prompting.")
	}

	messages := make([]api.Message, 0, len(turns)+2)
	if c.system != "" {
		messages = append(messages, api.Message{Role: "system", Content: c.system})
	}
	messages = append(messages, ToOllamaMessages(turns)...)
	messages = append(messages, api.Message{Role: "user", Content: input})

	req := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
	}

	var reply strings.Builder
	var cbErr error
	err := client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		reply.WriteString(resp.Message.Content)
		if err := cb(assistant.Delta{Text: resp.Message.Content, Model: assistant.IdentitySelfHosted}); err != nil {
			cbErr = err
			return err
		}
		return nil
	})
	if err != nil {
		if cbErr != nil {
			return cbErr
		}
		var statusErr api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return assistant.NewError(assistant.KindRemoteNotFound,
				"Model not found",
				fmt.Sprintf("The server at %s does not have model %q.", baseURL, model))
		}
		return assistant.TransportError("Server unreachable", err)
	}

	c.mu.Lock()
	c.turns = append(c.turns,
		assistant.Turn{Role: assistant.RoleUser, Content: input},
		assistant.Turn{Role: assistant.RoleAssistant, Content: reply.String()},
	)
	c.mu.Unlock()
	return nil
}
