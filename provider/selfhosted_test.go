package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ollama/ollama/api"

	"linguatui/assistant"
)

// chatServer is a minimal ollama-protocol endpoint that records every chat
// request and streams a scripted reply back in chunks.
type chatServer struct {
	mu       sync.Mutex
	requests []api.ChatRequest
	chunks   []string
	status   int
}

func (s *chatServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req api.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		status := s.status
		chunks := s.chunks
		s.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":"model %s not found"}`, req.Model)
			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		for _, chunk := range chunks {
			enc.Encode(api.ChatResponse{
				Model:     req.Model,
				CreatedAt: time.Now(),
				Message:   api.Message{Role: "assistant", Content: chunk},
			})
		}
		enc.Encode(api.ChatResponse{
			Model:     req.Model,
			CreatedAt: time.Now(),
			Message:   api.Message{Role: "assistant"},
			Done:      true,
		})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"llama3:8b"},{"name":"gemma2:2b"}]}`)
	})
	return mux
}

func (s *chatServer) lastRequest(t *testing.T) api.ChatRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("server received no chat requests")
	}
	return s.requests[len(s.requests)-1]
}

func newSelfHostedForTest(t *testing.T, srv *chatServer) (*SelfHosted, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	c, err := NewSelfHosted(ts.URL, "llama3:8b", "You are a language tutor.", true, nil)
	if err != nil {
		t.Fatalf("NewSelfHosted() error = %v", err)
	}
	return c, ts
}

func TestSelfHostedStreamsChunks(t *testing.T) {
	srv := &chatServer{chunks: []string{"Hola", ", ", "mundo"}}
	c, _ := newSelfHostedForTest(t, srv)

	deltas, err := collectDeltas(t, c, "say hello")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}

	want := []string{"Hola", ", ", "mundo"}
	if len(deltas) != len(want) {
		t.Fatalf("got %d deltas, want %d", len(deltas), len(want))
	}
	for i, d := range deltas {
		if d.Text != want[i] {
			t.Errorf("delta[%d].Text = %q, want %q", i, d.Text, want[i])
		}
		if d.Model != assistant.IdentitySelfHosted {
			t.Errorf("delta[%d].Model = %q, want %q", i, d.Model, assistant.IdentitySelfHosted)
		}
	}

	req := srv.lastRequest(t)
	if req.Model != "llama3:8b" {
		t.Errorf("request model = %q, want %q", req.Model, "llama3:8b")
	}
	if len(req.Messages) != 2 {
		t.Fatalf("request carried %d messages, want system + user", len(req.Messages))
	}
	if req.Messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", req.Messages[0].Role)
	}
	if req.Messages[1].Content != "say hello" {
		t.Errorf("user message content = %q", req.Messages[1].Content)
	}
}

func TestSelfHostedResendsHistory(t *testing.T) {
	srv := &chatServer{chunks: []string{"Hola, mundo"}}
	c, _ := newSelfHostedForTest(t, srv)

	if _, err := collectDeltas(t, c, "first"); err != nil {
		t.Fatalf("first Prompt() error = %v", err)
	}
	if _, err := collectDeltas(t, c, "second"); err != nil {
		t.Fatalf("second Prompt() error = %v", err)
	}

	req := srv.lastRequest(t)
	// system + prior user + prior assistant + new user
	if len(req.Messages) != 4 {
		t.Fatalf("second request carried %d messages, want 4", len(req.Messages))
	}
	if req.Messages[1].Content != "first" || req.Messages[1].Role != "user" {
		t.Errorf("history user turn = %+v", req.Messages[1])
	}
	if req.Messages[2].Content != "Hola, mundo" || req.Messages[2].Role != "assistant" {
		t.Errorf("history assistant turn = %+v", req.Messages[2])
	}
	if req.Messages[3].Content != "second" {
		t.Errorf("new user turn = %+v", req.Messages[3])
	}
}

func TestSelfHostedResetHistory(t *testing.T) {
	srv := &chatServer{chunks: []string{"ok"}}
	c, _ := newSelfHostedForTest(t, srv)

	if _, err := collectDeltas(t, c, "first"); err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	c.ResetHistory(nil)
	if _, err := collectDeltas(t, c, "fresh"); err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}

	req := srv.lastRequest(t)
	if len(req.Messages) != 2 {
		t.Errorf("request after reset carried %d messages, want 2", len(req.Messages))
	}
}

func TestSelfHostedMissingModel(t *testing.T) {
	srv := &chatServer{chunks: []string{"ok"}}
	c, _ := newSelfHostedForTest(t, srv)
	c.SetModel("")

	_, err := collectDeltas(t, c, "hello")
	pe, ok := assistant.AsError(err)
	if !ok {
		t.Fatalf("Prompt() error = %v, want *assistant.Error", err)
	}
	if pe.Kind != assistant.KindMissingModelConfig {
		t.Errorf("Kind = %q, want %q", pe.Kind, assistant.KindMissingModelConfig)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.requests) != 0 {
		t.Errorf("server received %d requests, want none", len(srv.requests))
	}
}

func TestSelfHostedModelNotFound(t *testing.T) {
	srv := &chatServer{status: http.StatusNotFound}
	c, _ := newSelfHostedForTest(t, srv)

	_, err := collectDeltas(t, c, "hello")
	pe, ok := assistant.AsError(err)
	if !ok {
		t.Fatalf("Prompt() error = %v, want *assistant.Error", err)
	}
	if pe.Kind != assistant.KindRemoteNotFound {
		t.Errorf("Kind = %q, want %q", pe.Kind, assistant.KindRemoteNotFound)
	}
	if pe.Title != "Model not found" {
		t.Errorf("Title = %q, want %q", pe.Title, "Model not found")
	}
}

func TestSelfHostedServerUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewSelfHosted(url, "llama3:8b", "", true, nil)
	if err != nil {
		t.Fatalf("NewSelfHosted() error = %v", err)
	}

	_, err = collectDeltas(t, c, "hello")
	pe, ok := assistant.AsError(err)
	if !ok {
		t.Fatalf("Prompt() error = %v, want *assistant.Error", err)
	}
	if pe.Kind != assistant.KindTransportFailure {
		t.Errorf("Kind = %q, want %q", pe.Kind, assistant.KindTransportFailure)
	}
}

func TestSelfHostedCallbackErrorPassesThrough(t *testing.T) {
	srv := &chatServer{chunks: []string{"Hola", "mundo"}}
	c, _ := newSelfHostedForTest(t, srv)

	sentinel := errors.New("consumer stopped")
	err := c.Prompt(context.Background(), "hello", func(d assistant.Delta) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Prompt() error = %v, want sentinel callback error", err)
	}
}

func TestSelfHostedSetURLSwitchesServer(t *testing.T) {
	first := &chatServer{chunks: []string{"ok"}}
	c, _ := newSelfHostedForTest(t, first)

	second := &chatServer{chunks: []string{"ok"}}
	ts := httptest.NewServer(second.handler())
	t.Cleanup(ts.Close)

	if _, err := collectDeltas(t, c, "hello"); err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if err := c.SetURL(ts.URL); err != nil {
		t.Fatalf("SetURL() error = %v", err)
	}
	if got := c.URL(); got != ts.URL {
		t.Errorf("URL() = %q, want %q", got, ts.URL)
	}
	if _, err := collectDeltas(t, c, "again"); err != nil {
		t.Fatalf("Prompt() after SetURL error = %v", err)
	}

	first.mu.Lock()
	firstCount := len(first.requests)
	first.mu.Unlock()
	if firstCount != 1 {
		t.Errorf("old server received %d requests, want 1", firstCount)
	}

	req := second.lastRequest(t)
	if got := req.Messages[len(req.Messages)-1].Content; got != "again" {
		t.Errorf("new server got prompt %q, want %q", got, "again")
	}
}

func TestSelfHostedListModels(t *testing.T) {
	srv := &chatServer{}
	c, _ := newSelfHostedForTest(t, srv)

	names, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	want := []string{"llama3:8b", "gemma2:2b"}
	if len(names) != len(want) {
		t.Fatalf("got %d models, want %d", len(names), len(want))
	}
	for i, n := range names {
		if n != want[i] {
			t.Errorf("models[%d] = %q, want %q", i, n, want[i])
		}
	}
}
