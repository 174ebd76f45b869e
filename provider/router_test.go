package provider_test

import (
	"context"
	"errors"
	"testing"

	"linguatui/assistant"
	"linguatui/provider"
	"linguatui/provider/testutil"
)

func TestRouterDispatchesToPreferredClient(t *testing.T) {
	preferred := assistant.IdentityCloudFlash
	r := provider.NewRouter(func() assistant.Identity { return preferred })

	flash := testutil.NewMockClient(assistant.IdentityCloudFlash, "hola", " mundo")
	claude := testutil.NewMockClient(assistant.IdentityCloudClaude, "bonjour")
	r.Register(flash)
	r.Register(claude)

	var got string
	err := r.Prompt(context.Background(), "hello world", func(d assistant.Delta) error {
		got += d.Text
		return nil
	})
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if got != "hola mundo" {
		t.Errorf("streamed %q, want %q", got, "hola mundo")
	}
	if len(flash.Inputs) != 1 || flash.Inputs[0] != "hello world" {
		t.Errorf("flash.Inputs = %v, want [hello world]", flash.Inputs)
	}
	if len(claude.Inputs) != 0 {
		t.Errorf("claude.Inputs = %v, want no calls", claude.Inputs)
	}
}

func TestRouterReadsPreferenceAtCallTime(t *testing.T) {
	preferred := assistant.IdentityCloudFlash
	r := provider.NewRouter(func() assistant.Identity { return preferred })

	flash := testutil.NewMockClient(assistant.IdentityCloudFlash, "from flash")
	claude := testutil.NewMockClient(assistant.IdentityCloudClaude, "from claude")
	r.Register(flash)
	r.Register(claude)

	discard := func(d assistant.Delta) error { return nil }

	if err := r.Prompt(context.Background(), "first", discard); err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}

	preferred = assistant.IdentityCloudClaude
	if err := r.Prompt(context.Background(), "second", discard); err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}

	if got := r.Identity(); got != assistant.IdentityCloudClaude {
		t.Errorf("Identity() = %q, want %q", got, assistant.IdentityCloudClaude)
	}
	if len(flash.Inputs) != 1 {
		t.Errorf("flash received %d prompts, want 1", len(flash.Inputs))
	}
	if len(claude.Inputs) != 1 || claude.Inputs[0] != "second" {
		t.Errorf("claude.Inputs = %v, want [second]", claude.Inputs)
	}
}

func TestRouterUnknownIdentity(t *testing.T) {
	r := provider.NewRouter(func() assistant.Identity { return assistant.IdentitySelfHosted })

	err := r.Prompt(context.Background(), "hello", func(d assistant.Delta) error {
		t.Error("callback invoked for unconfigured identity")
		return nil
	})

	pe, ok := assistant.AsError(err)
	if !ok {
		t.Fatalf("Prompt() error = %v, want *assistant.Error", err)
	}
	if pe.Kind != assistant.KindMissingModelConfig {
		t.Errorf("Kind = %q, want %q", pe.Kind, assistant.KindMissingModelConfig)
	}
	if pe.Title != "No model selected" {
		t.Errorf("Title = %q, want %q", pe.Title, "No model selected")
	}
}

func TestRouterPassesClientErrorThrough(t *testing.T) {
	r := provider.NewRouter(func() assistant.Identity { return assistant.IdentityCloudFlash })

	clientErr := assistant.NewError(assistant.KindMissingCredential, "Missing API key", "Add a key in settings.")
	failing := testutil.NewMockClient(assistant.IdentityCloudFlash)
	failing.Err = clientErr
	r.Register(failing)

	// A second registered client must not be tried as a fallback.
	backup := testutil.NewMockClient(assistant.IdentityCloudClaude, "fallback")
	r.Register(backup)

	err := r.Prompt(context.Background(), "hello", func(d assistant.Delta) error { return nil })
	if !errors.Is(err, clientErr) {
		t.Errorf("Prompt() error = %v, want the client's own error", err)
	}
	if len(backup.Inputs) != 0 {
		t.Errorf("backup client received %v, want no calls", backup.Inputs)
	}
}

func TestRouterRegisterReplaces(t *testing.T) {
	r := provider.NewRouter(func() assistant.Identity { return assistant.IdentityCloudFlash })

	first := testutil.NewMockClient(assistant.IdentityCloudFlash, "old")
	second := testutil.NewMockClient(assistant.IdentityCloudFlash, "new")
	r.Register(first)
	r.Register(second)

	var got string
	if err := r.Prompt(context.Background(), "x", func(d assistant.Delta) error {
		got += d.Text
		return nil
	}); err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if got != "new" {
		t.Errorf("streamed %q, want %q", got, "new")
	}

	if c, ok := r.Client(assistant.IdentityCloudFlash); !ok || c != assistant.Client(second) {
		t.Error("Client() did not return the replacing client")
	}
}
