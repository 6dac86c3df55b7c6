package models

// Message roles. System messages are synthesized per request and never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry of a conversation transcript. The transcript is
// append-only; entries are never rewritten or deleted. This is also the
// wire shape sent to the inference provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
