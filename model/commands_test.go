package model

import (
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"linguatui/assistant"
	"linguatui/config"
	"linguatui/provider"
	"linguatui/provider/testutil"
)

func newStreamTestModel(t *testing.T, client *testutil.MockClient) *Model {
	t.Helper()

	cfg := &config.Config{
		DataDirectory:  t.TempDir(),
		PreferredModel: string(client.ID),
	}
	router := provider.NewRouter(func() assistant.Identity {
		return assistant.Identity(cfg.PreferredModel)
	})
	router.Register(client)

	return NewModel(cfg, &provider.Clients{Router: router}, nil, nil, nil, "test")
}

// drainStream runs the wait command loop the way the update loop would,
// collecting every message until the channel closes.
func drainStream(t *testing.T, m *Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var msgs []tea.Msg
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		msgs = append(msgs, msg)
		cmd = m.WaitForDelta()
	}
	return msgs
}

func TestSendPromptStreamsDeltasThenDone(t *testing.T) {
	client := testutil.NewMockClient(assistant.IdentityCloudFlash, "Hola", ", ", "mundo")
	m := newStreamTestModel(t, client)

	msgs := drainStream(t, m, m.SendPrompt("say hello"))
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 3 deltas + done", len(msgs))
	}

	wantText := []string{"Hola", ", ", "mundo"}
	for i, want := range wantText {
		delta, ok := msgs[i].(StreamDeltaMsg)
		if !ok {
			t.Fatalf("msgs[%d] = %T, want StreamDeltaMsg", i, msgs[i])
		}
		if delta.Delta.Text != want {
			t.Errorf("msgs[%d].Text = %q, want %q", i, delta.Delta.Text, want)
		}
	}

	done, ok := msgs[3].(StreamDoneMsg)
	if !ok {
		t.Fatalf("msgs[3] = %T, want StreamDoneMsg", msgs[3])
	}
	if done.FullResponse != "Hola, mundo" {
		t.Errorf("FullResponse = %q, want %q", done.FullResponse, "Hola, mundo")
	}
	if done.Model != assistant.IdentityCloudFlash {
		t.Errorf("Model = %q, want %q", done.Model, assistant.IdentityCloudFlash)
	}

	if len(client.Inputs) != 1 || client.Inputs[0] != "say hello" {
		t.Errorf("client.Inputs = %v", client.Inputs)
	}
}

func TestSendPromptReportsTypedError(t *testing.T) {
	client := testutil.NewMockClient(assistant.IdentityCloudClaude)
	client.Err = assistant.NewError(assistant.KindMissingCredential, "Missing API key", "Add a key in settings.")
	m := newStreamTestModel(t, client)

	msgs := drainStream(t, m, m.SendPrompt("hello"))
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 error", len(msgs))
	}
	errMsg, ok := msgs[0].(StreamErrorMsg)
	if !ok {
		t.Fatalf("msgs[0] = %T, want StreamErrorMsg", msgs[0])
	}
	if errMsg.Err.Kind != assistant.KindMissingCredential {
		t.Errorf("Kind = %q, want %q", errMsg.Err.Kind, assistant.KindMissingCredential)
	}
}

func TestSendPromptWrapsUntypedError(t *testing.T) {
	client := testutil.NewMockClient(assistant.IdentitySelfHosted, "partial")
	client.Err = errors.New("connection reset")
	m := newStreamTestModel(t, client)

	msgs := drainStream(t, m, m.SendPrompt("hello"))
	last, ok := msgs[len(msgs)-1].(StreamErrorMsg)
	if !ok {
		t.Fatalf("last message = %T, want StreamErrorMsg", msgs[len(msgs)-1])
	}
	if last.Err.Kind != assistant.KindTransportFailure {
		t.Errorf("Kind = %q, want %q", last.Err.Kind, assistant.KindTransportFailure)
	}
	if last.Err.Description != "connection reset" {
		t.Errorf("Description = %q", last.Err.Description)
	}
}

func TestWaitForDeltaWithoutStream(t *testing.T) {
	m := &Model{}
	if cmd := m.WaitForDelta(); cmd != nil {
		t.Error("WaitForDelta() with no active stream returned a command")
	}
}

func TestSetPreferredIdentityPersists(t *testing.T) {
	client := testutil.NewMockClient(assistant.IdentityOnDevice)
	m := newStreamTestModel(t, client)

	if err := m.SetPreferredIdentity(assistant.IdentitySelfHosted); err != nil {
		t.Fatalf("SetPreferredIdentity() error = %v", err)
	}
	if got := m.PreferredIdentity(); got != assistant.IdentitySelfHosted {
		t.Errorf("PreferredIdentity() = %q", got)
	}

	// The preference lands in the user config file.
	saved, err := config.LoadUserConfig(m.Config.DataDir())
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}
	if saved.PreferredModel != string(assistant.IdentitySelfHosted) {
		t.Errorf("saved PreferredModel = %q", saved.PreferredModel)
	}
	if got := filepath.Join(m.Config.DataDir(), "config.toml"); !config.FileExists(got) {
		t.Errorf("config file missing at %s", got)
	}
}
