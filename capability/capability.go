// Package capability abstracts the on-device language model boundary.
//
// The on-device backend is the only one with an asynchronous readiness
// lifecycle: the hosting runtime may lack the capability entirely, have it
// but not the model, be downloading the model, or be ready. Provider is the
// injected interface over that lifecycle and Tracker is the polling state
// machine that drives it; both exist so the lifecycle can be tested with a
// scripted fake instead of a live runtime.
package capability

import "context"

// State is the current readiness of the on-device capability.
type State int

const (
	// StateUnsupported means the host environment lacks the capability.
	// Terminal; nothing further is attempted.
	StateUnsupported State = iota
	// StateUnavailable means the capability exists but the model cannot be
	// made present. Terminal until the host changes externally.
	StateUnavailable
	// StateDownloading means the model is actively becoming available.
	StateDownloading
	// StateReady means session construction may proceed.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnsupported:
		return "unsupported"
	case StateUnavailable:
		return "unavailable"
	case StateDownloading:
		return "downloading"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Prompt is one turn in the capability's own conversation format. Assistant
// turns carry the role "model"; multi-part content is a list of text parts.
type Prompt struct {
	Role  string
	Parts []string
}

// Capability prompt roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// SessionOptions configure one-time session construction.
type SessionOptions struct {
	SystemPrompt   string
	InitialPrompts []Prompt

	// Sampling parameters; zero values leave the runtime defaults in place.
	Temperature float64
	TopK        int
}

// Session is a long-lived on-device conversation. PromptStreaming sends
// input and invokes fn with the full response text produced so far: the
// snapshots are cumulative, and each call supersedes the previous one.
// The session appends the exchange to its own history on success.
type Session interface {
	PromptStreaming(ctx context.Context, input string, fn func(snapshot string) error) error
}

// Provider is the injected capability boundary: a state query plus one-time
// session construction. Availability never fails; adapters fold query errors
// into the state they imply.
type Provider interface {
	Availability(ctx context.Context) State
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
}
