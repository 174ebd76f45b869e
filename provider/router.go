package provider

import (
	"context"
	"fmt"

	"linguatui/assistant"
)

// Router implements assistant.Client by dispatch: it reads the preferred
// identity at call time, delegates the prompt wholly to the matching client,
// and passes the delta stream and any error through unmodified. A failing
// client is reported, never silently retried on another provider.
type Router struct {
	clients   map[assistant.Identity]assistant.Client
	preferred func() assistant.Identity
}

// NewRouter creates a router. preferred is consulted on every prompt so a
// changed preference takes effect on the next call without rebuilding
// anything.
func NewRouter(preferred func() assistant.Identity) *Router {
	return &Router{
		clients:   make(map[assistant.Identity]assistant.Client),
		preferred: preferred,
	}
}

// Register adds a client under its own identity. Registering the same
// identity twice replaces the earlier client.
func (r *Router) Register(c assistant.Client) {
	r.clients[c.Identity()] = c
}

// Client returns the registered client for id, if any.
func (r *Router) Client(id assistant.Identity) (assistant.Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Identity implements assistant.Client; the router answers as whichever
// backend is currently preferred.
func (r *Router) Identity() assistant.Identity {
	return r.preferred()
}

// Prompt implements assistant.Client.
func (r *Router) Prompt(ctx context.Context, input string, cb assistant.StreamCallback) error {
	id := r.preferred()
	c, ok := r.clients[id]
	if !ok {
		return assistant.NewError(assistant.KindMissingModelConfig,
			"No model selected",
			fmt.Sprintf("No client is configured for model %q. Pick another model in settings.", id))
	}
	return c.Prompt(ctx, input, cb)
}
