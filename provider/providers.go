package provider

import (
	"linguatui/assistant"
	"linguatui/capability"
	"linguatui/config"
)

// Clients holds every backend client plus the router in front of them.
// Individual clients are exposed so the UI can drive their lifecycle
// methods (SetCredential, SetModel, ResetHistory) directly.
type Clients struct {
	Router     *Router
	OnDevice   *OnDevice
	CloudFlash *CloudFlash
	Claude     *CloudClaude
	SelfHosted *SelfHosted

	// Tracker drives the on-device availability lifecycle. The caller
	// owns its goroutine: go clients.Tracker.Run(ctx).
	Tracker *capability.Tracker
}

// InitializeClients creates ALL backend clients for the application.
//
// This is the single entry point for client initialization. Failures
// degrade gracefully: a client that cannot be constructed is logged and
// left out of the router, and prompting it reports a typed error instead
// of crashing the app.
func InitializeClients(cfg *config.Config) *Clients {
	system := cfg.SystemPrompt
	if system == "" {
		system = config.DefaultSystemPrompt
	}
	seed := config.SeedTurns()

	clients := &Clients{
		Router: NewRouter(func() assistant.Identity {
			return assistant.Identity(cfg.PreferredModel)
		}),
	}

	runtime, err := capability.NewRuntime(cfg.Runtime.Host, cfg.Runtime.Model)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] on-device runtime creation failed: %v", err)
		}
	} else {
		clients.Tracker = capability.NewTracker(runtime, capability.SessionOptions{
			SystemPrompt:   system,
			InitialPrompts: ToCapabilityPrompts(seed),
		})
		clients.OnDevice = NewOnDevice(clients.Tracker)
		clients.Router.Register(clients.OnDevice)
	}

	geminiKey := ""
	anthropicKey := ""
	if cfg.CredentialStore != nil {
		geminiKey = cfg.CredentialStore.Get(config.CredentialGemini)
		anthropicKey = cfg.CredentialStore.Get(config.CredentialAnthropic)
	}

	clients.CloudFlash = NewCloudFlash("", geminiKey, cfg.Cloud.FlashModel, system, seed)
	clients.Router.Register(clients.CloudFlash)

	clients.Claude = NewCloudClaude("", anthropicKey, cfg.Cloud.ClaudeModel, system, seed)
	clients.Router.Register(clients.Claude)

	selfHosted, err := NewSelfHosted(cfg.Server.URL, cfg.Server.Model, system, cfg.Server.Stream, seed)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] self-hosted client creation failed: %v", err)
		}
	} else {
		clients.SelfHosted = selfHosted
		clients.Router.Register(selfHosted)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] initialized clients, preferred=%s", cfg.PreferredModel)
	}
	return clients
}

// ResetHistories reseeds every stateful client's conversation. Used when
// the user clears the conversation or changes the system prompt.
func (c *Clients) ResetHistories(seed []assistant.Turn) {
	if c.CloudFlash != nil {
		c.CloudFlash.ResetHistory(seed)
	}
	if c.Claude != nil {
		c.Claude.ResetHistory(seed)
	}
	if c.SelfHosted != nil {
		c.SelfHosted.ResetHistory(seed)
	}
}
