package provider

import (
	"context"

	"linguatui/assistant"
	"linguatui/capability"
)

// OnDevice implements assistant.Client over the on-device capability. The
// session is long-lived: the availability tracker constructs it once from
// the initial conversation, and every prompt reuses it.
type OnDevice struct {
	tracker *capability.Tracker
}

// NewOnDevice creates the on-device client. The tracker is expected to be
// running (or already settled); the client only reads its state.
func NewOnDevice(tracker *capability.Tracker) *OnDevice {
	return &OnDevice{tracker: tracker}
}

// Identity implements assistant.Client.
func (c *OnDevice) Identity() assistant.Identity {
	return assistant.IdentityOnDevice
}

// State exposes the tracker's current availability for the UI.
func (c *OnDevice) State() capability.State {
	return c.tracker.State()
}

// Prompt implements assistant.Client. The capability session delivers
// cumulative snapshots of the response; only the unseen suffix of each
// snapshot is emitted, so the consumer never receives duplicate text.
func (c *OnDevice) Prompt(ctx context.Context, input string, cb assistant.StreamCallback) error {
	switch c.tracker.State() {
	case capability.StateUnsupported:
		return assistant.NewError(assistant.KindCapabilityUnsupported,
			"Unsupported environment",
			"The local model runtime is not available on this system.")
	case capability.StateUnavailable, capability.StateDownloading:
		return assistant.NewError(assistant.KindCapabilityNotReady,
			"Model not ready",
			"The on-device model is still being prepared. Try again in a moment.")
	}

	sess := c.tracker.Session()
	if sess == nil {
		return assistant.NewError(assistant.KindCapabilityNotReady,
			"Model not ready",
			"The on-device session could not be initialized.")
	}

	seen := 0
	var cbErr error
	err := sess.PromptStreaming(ctx, input, func(snapshot string) error {
		if len(snapshot) <= seen {
			return nil
		}
		text := snapshot[seen:]
		seen = len(snapshot)
		if err := cb(assistant.Delta{Text: text, Model: assistant.IdentityOnDevice}); err != nil {
			cbErr = err
			return err
		}
		return nil
	})
	if err != nil {
		if cbErr != nil {
			return cbErr
		}
		return assistant.TransportError("On-device prompt failed", err)
	}
	if seen == 0 {
		return assistant.NewError(assistant.KindEmptyResponse,
			"Empty response",
			"The on-device model returned no text.")
	}
	return nil
}
