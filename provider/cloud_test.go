package provider

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"linguatui/assistant"
)

// flashTestServer speaks just enough of the OpenAI-compatible SSE chat
// protocol for the flash client's streaming path.
func flashTestServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprintf(w,
				"data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"model\":\"gemini-1.5-flash\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n",
				chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestCloudFlashStreams(t *testing.T) {
	ts := flashTestServer(t, []string{"Hola", ", ", "mundo"})
	c := NewCloudFlash(ts.URL, "test-key", "gemini-1.5-flash", "You are a tutor.", nil)

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
		if d.Model != assistant.IdentityCloudFlash {
			t.Errorf("delta[%d].Model = %q, want %q", i, d.Model, assistant.IdentityCloudFlash)
		}
	}
}

func TestCloudFlashMissingCredential(t *testing.T) {
	c := NewCloudFlash("", "", "", "", nil)

	_, err := collectDeltas(t, c, "hello")
	pe, ok := assistant.AsError(err)
	if !ok {
		t.Fatalf("Prompt() error = %v, want *assistant.Error", err)
	}
	if pe.Kind != assistant.KindMissingCredential {
		t.Errorf("Kind = %q, want %q", pe.Kind, assistant.KindMissingCredential)
	}
}

func TestCloudFlashCredentialSetLater(t *testing.T) {
	ts := flashTestServer(t, []string{"ok"})
	c := NewCloudFlash(ts.URL, "", "", "", nil)

	if _, err := collectDeltas(t, c, "hello"); err == nil {
		t.Fatal("Prompt() with no key succeeded, want credential error")
	}

	c.SetCredential("test-key")
	if _, err := collectDeltas(t, c, "hello"); err != nil {
		t.Errorf("Prompt() after SetCredential error = %v", err)
	}
}

func TestCloudFlashTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewCloudFlash(url, "test-key", "", "", nil)
	_, err := collectDeltas(t, c, "hello")
	pe, ok := assistant.AsError(err)
	if !ok {
		t.Fatalf("Prompt() error = %v, want *assistant.Error", err)
	}
	if pe.Kind != assistant.KindTransportFailure {
		t.Errorf("Kind = %q, want %q", pe.Kind, assistant.KindTransportFailure)
	}
}

func TestCloudFlashSetModelAppliesToRequests(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"ok\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(ts.Close)

	c := NewCloudFlash(ts.URL, "test-key", "gemini-1.5-flash", "", nil)
	if _, err := collectDeltas(t, c, "hello"); err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	c.SetModel("gemini-2.0-flash")
	if _, err := collectDeltas(t, c, "hello"); err != nil {
		t.Fatalf("Prompt() after SetModel error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 2 {
		t.Fatalf("server received %d requests, want 2", len(bodies))
	}
	if !strings.Contains(bodies[0], `"gemini-1.5-flash"`) {
		t.Errorf("first request did not carry the original model: %s", bodies[0])
	}
	if !strings.Contains(bodies[1], `"gemini-2.0-flash"`) {
		t.Errorf("second request did not carry the new model: %s", bodies[1])
	}
}

func TestCloudFlashEmptyResponse(t *testing.T) {
	ts := flashTestServer(t, nil)
	c := NewCloudFlash(ts.URL, "test-key", "", "", nil)

	deltas, err := collectDeltas(t, c, "hello")
	pe, ok := assistant.AsError(err)
	if !ok {
		t.Fatalf("Prompt() error = %v, want *assistant.Error", err)
	}
	if pe.Kind != assistant.KindEmptyResponse {
		t.Errorf("Kind = %q, want %q", pe.Kind, assistant.KindEmptyResponse)
	}
	if len(deltas) != 0 {
		t.Errorf("got %d deltas, want none", len(deltas))
	}
}

func TestCloudClaudeSetModel(t *testing.T) {
	c := NewCloudClaude("", "test-key", "claude-sonnet-4-5", "", nil)
	if got := c.Model(); got != "claude-sonnet-4-5" {
		t.Errorf("Model() = %q, want %q", got, "claude-sonnet-4-5")
	}

	c.SetModel("claude-haiku-4-5")
	if got := c.Model(); got != "claude-haiku-4-5" {
		t.Errorf("Model() after SetModel = %q, want %q", got, "claude-haiku-4-5")
	}
}

func TestCloudClaudeMissingCredential(t *testing.T) {
	c := NewCloudClaude("", "", "", "", nil)

	_, err := collectDeltas(t, c, "hello")
	pe, ok := assistant.AsError(err)
	if !ok {
		t.Fatalf("Prompt() error = %v, want *assistant.Error", err)
	}
	if pe.Kind != assistant.KindMissingCredential {
		t.Errorf("Kind = %q, want %q", pe.Kind, assistant.KindMissingCredential)
	}
}

func TestCloudIdentities(t *testing.T) {
	if got := NewCloudFlash("", "", "", "", nil).Identity(); got != assistant.IdentityCloudFlash {
		t.Errorf("flash Identity() = %q", got)
	}
	if got := NewCloudClaude("", "", "", "", nil).Identity(); got != assistant.IdentityCloudClaude {
		t.Errorf("claude Identity() = %q", got)
	}
}
