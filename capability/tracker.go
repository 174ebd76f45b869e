package capability

import (
	"context"
	"sync"
	"time"

	"linguatui/config"
)

// DefaultPollInterval is how often the tracker re-queries availability while
// the model is downloading.
const DefaultPollInterval = 100 * time.Millisecond

// Tracker observes a capability provider's readiness lifecycle and performs
// one-time session construction when the provider reports ready.
//
// Transition rule: only StateDownloading is re-polled; every other state is
// accepted as reported and the tracker stops. StateReady is terminal for the
// tracker's lifetime.
//
// Session construction failure is logged and leaves the session nil; the
// on-device client then reports not-ready instead of a conversation error.
type Tracker struct {
	provider Provider
	opts     SessionOptions

	// Interval between polls while downloading. Set before Run if the
	// default is not wanted (tests use a short interval).
	Interval time.Duration

	mu      sync.Mutex
	state   State
	session Session
	done    bool
}

// NewTracker creates a tracker over the given provider. The session, once
// the provider is ready, is constructed from opts.
func NewTracker(p Provider, opts SessionOptions) *Tracker {
	return &Tracker{
		provider: p,
		opts:     opts,
		Interval: DefaultPollInterval,
		state:    StateUnavailable,
	}
}

// Run drives the lifecycle until a terminal state is reached or ctx is
// cancelled. Call it once, typically on its own goroutine.
func (t *Tracker) Run(ctx context.Context) {
	for {
		state := t.provider.Availability(ctx)
		t.setState(state)

		switch state {
		case StateDownloading:
			select {
			case <-ctx.Done():
				return
			case <-time.After(t.Interval):
			}

		case StateReady:
			t.buildSession(ctx)
			return

		default:
			// Unsupported and Unavailable are not re-queried.
			t.finish()
			return
		}
	}
}

// State reports the most recently observed availability.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Session returns the constructed session, or nil while the capability is
// not ready (or when construction failed).
func (t *Tracker) Session() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Done reports whether the tracker has reached a terminal state.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Tracker) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Tracker) finish() {
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
}

func (t *Tracker) buildSession(ctx context.Context) {
	sess, err := t.provider.NewSession(ctx, t.opts)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Tracker] session construction failed: %v", err)
		}
		return
	}
	t.session = sess
}
