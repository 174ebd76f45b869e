// Package assistant defines the provider-agnostic conversational contract.
//
// linguatui talks to several very different language-model backends (the local
// runtime model, cloud streaming APIs, a self-hosted Ollama server). Each of
// them is wrapped by a client in the provider package; all of those clients
// speak the single contract defined here, so the UI and session logic never
// see a backend-specific type.
//
// The contract is intentionally small:
//
//   - Client.Prompt streams the answer as append-only text deltas through a
//     callback, in emission order.
//   - A failed prompt returns exactly one *Error and delivers no further
//     deltas. Clients convert every backend failure into an *Error at their
//     boundary; no raw SDK or transport error crosses into callers.
//
// The interface lives here rather than in the provider package so provider
// implementations can import assistant without creating an import cycle.
package assistant

import "context"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the canonical conversation. The sequence is ordered
// and append-only during a session. Short, when set, is a compact display
// form of Content (e.g. the selected word rather than the full translation
// instruction built around it).
type Turn struct {
	Role    Role
	Content string
	Short   string
}

// DisplayText returns the text the UI should show for this turn.
func (t Turn) DisplayText() string {
	if t.Short != "" {
		return t.Short
	}
	return t.Content
}

// PendingPrompt is the transient request the UI holds between submitting an
// utterance and appending the resulting turns. At most one is in flight.
type PendingPrompt struct {
	Full  string
	Short string
}

// Identity names one configured backend. One persisted preference selects
// the active identity; each identity maps to exactly one client.
type Identity string

const (
	IdentityOnDevice    Identity = "ondevice"
	IdentityCloudFlash  Identity = "cloud-flash"
	IdentityCloudClaude Identity = "cloud-claude"
	IdentitySelfHosted  Identity = "selfhosted"
)

// Identities lists every selectable identity in display order.
func Identities() []Identity {
	return []Identity{
		IdentityOnDevice,
		IdentityCloudFlash,
		IdentityCloudClaude,
		IdentitySelfHosted,
	}
}

// Delta is one unit of streamed assistant output. Text is incremental: the
// full answer is the concatenation of every delta's Text in the order the
// callback received them. Model reports which backend produced the text.
type Delta struct {
	Text  string
	Model Identity
}

// StreamCallback receives deltas during a prompt. Returning a non-nil error
// stops the stream; the client reports it as the prompt's failure.
type StreamCallback func(d Delta) error

// Client is the prompting contract shared by every provider client and by
// the router. Prompt streams the response to input through cb and blocks
// until the stream finishes. The sequence is finite and not restartable.
//
// On failure Prompt returns a *Error describing what went wrong in
// user-facing terms; callers may rely on errors.As to recover it. A client
// whose backend session is not usable fails fast without a network call.
type Client interface {
	Identity() Identity
	Prompt(ctx context.Context, input string, cb StreamCallback) error
}
