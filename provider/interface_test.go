package provider

import "linguatui/assistant"

// Compile-time checks that every client satisfies the prompting contract.
var (
	_ assistant.Client = (*OnDevice)(nil)
	_ assistant.Client = (*CloudFlash)(nil)
	_ assistant.Client = (*CloudClaude)(nil)
	_ assistant.Client = (*SelfHosted)(nil)
	_ assistant.Client = (*Router)(nil)
)
