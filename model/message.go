package model

import "time"

// Message is a conversation entry as the UI holds it. Short carries the
// display form of prefixed user prompts; Rendered caches the markdown
// rendering of assistant replies.
type Message struct {
	Role      string
	Content   string
	Short     string
	Rendered  string
	Model     string
	Timestamp time.Time
}

// DisplayText returns what the conversation shows for this message.
func (m Message) DisplayText() string {
	if m.Short != "" {
		return m.Short
	}
	return m.Content
}
