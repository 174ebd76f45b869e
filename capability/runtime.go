package capability

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ollama/ollama/api"

	"linguatui/config"
)

const defaultRuntimeModel = "llama3.2:latest"

// Runtime backs the capability boundary with the local model runtime daemon.
// The daemon owns the model lifecycle the same way a built-in browser model
// would: daemon unreachable means the host has no capability at all; a model
// that is not present yet is pulled in the background while availability
// reports downloading; a failed pull settles on unavailable.
type Runtime struct {
	client *api.Client
	model  string

	mu          sync.Mutex
	pullStarted bool
	pullDone    bool
	pullErr     error
}

// NewRuntime creates a runtime-backed capability provider for the daemon at
// baseURL (default http://localhost:11434) and the named model.
func NewRuntime(baseURL, model string) (*Runtime, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = defaultRuntimeModel
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid runtime URL: %w", err)
	}

	return &Runtime{
		client: api.NewClient(parsed, http.DefaultClient),
		model:  model,
	}, nil
}

// Model returns the model name this runtime manages.
func (r *Runtime) Model() string {
	return r.model
}

// Availability implements Provider. The first query that finds the model
// missing kicks off a background pull; subsequent queries report downloading
// until the pull settles.
func (r *Runtime) Availability(ctx context.Context) State {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := r.client.List(ctx)
	if err != nil {
		return StateUnsupported
	}

	for _, m := range resp.Models {
		if sameModelName(m.Name, r.model) {
			return StateReady
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pullDone && r.pullErr != nil {
		return StateUnavailable
	}
	if !r.pullStarted {
		r.pullStarted = true
		go r.pull()
	}
	return StateDownloading
}

// pull downloads the model. It runs detached from any availability query
// because the download outlives individual polls.
func (r *Runtime) pull() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var lastStatus string
	err := r.client.Pull(ctx, &api.PullRequest{Model: r.model}, func(p api.ProgressResponse) error {
		if config.DebugLog != nil && p.Status != lastStatus {
			lastStatus = p.Status
			config.DebugLog.Printf("[Runtime] pull %s: %s", r.model, p.Status)
		}
		return nil
	})

	r.mu.Lock()
	r.pullDone = true
	r.pullErr = err
	r.mu.Unlock()

	if err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Runtime] pull %s failed: %v", r.model, err)
	}
}

// NewSession implements Provider. It re-verifies the model is present and
// returns a session seeded with the adapted initial conversation.
func (r *Runtime) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	if _, err := r.client.Show(ctx, &api.ShowRequest{Model: r.model}); err != nil {
		return nil, fmt.Errorf("model %s not usable: %w", r.model, err)
	}

	history := make([]api.Message, 0, len(opts.InitialPrompts)+1)
	if opts.SystemPrompt != "" {
		history = append(history, api.Message{Role: "system", Content: opts.SystemPrompt})
	}
	for _, p := range opts.InitialPrompts {
		role := p.Role
		if role == RoleModel {
			role = "assistant"
		}
		history = append(history, api.Message{Role: role, Content: strings.Join(p.Parts, "\n")})
	}

	options := map[string]any{}
	if opts.Temperature != 0 {
		options["temperature"] = opts.Temperature
	}
	if opts.TopK != 0 {
		options["top_k"] = opts.TopK
	}

	return &runtimeSession{
		client:  r.client,
		model:   r.model,
		history: history,
		options: options,
	}, nil
}

type runtimeSession struct {
	client  *api.Client
	model   string
	options map[string]any

	mu      sync.Mutex
	history []api.Message
}

// PromptStreaming implements Session. The runtime streams text fragments;
// the session accumulates them and reports cumulative snapshots, which is
// the contract the capability boundary promises.
func (s *runtimeSession) PromptStreaming(ctx context.Context, input string, fn func(snapshot string) error) error {
	s.mu.Lock()
	messages := make([]api.Message, len(s.history), len(s.history)+1)
	copy(messages, s.history)
	s.mu.Unlock()
	messages = append(messages, api.Message{Role: "user", Content: input})

	stream := true
	req := &api.ChatRequest{
		Model:    s.model,
		Messages: messages,
		Stream:   &stream,
		Options:  s.options,
	}

	var full strings.Builder
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		full.WriteString(resp.Message.Content)
		return fn(full.String())
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.history = append(s.history,
		api.Message{Role: "user", Content: input},
		api.Message{Role: "assistant", Content: full.String()},
	)
	s.mu.Unlock()
	return nil
}

// sameModelName matches model names with or without the ":latest" tag.
func sameModelName(a, b string) bool {
	if a == b {
		return true
	}
	return strings.TrimSuffix(a, ":latest") == strings.TrimSuffix(b, ":latest")
}
