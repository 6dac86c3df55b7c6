package models

import (
	"fmt"
	"time"
)

// Conversation is the per-chat metadata record. Only Model changes after
// creation (the user may switch models between turns).
type Conversation struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	OwnerKey  OwnerKey  `json:"ownerKey"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnerKey identifies who a conversation is indexed under: either a durable
// user id ("user:<id>") or an ephemeral session id ("session:<id>").
type OwnerKey string

// UserOwner builds the owner key for an authenticated user.
func UserOwner(userID string) OwnerKey {
	return OwnerKey(fmt.Sprintf("user:%s", userID))
}

// SessionOwner builds the owner key for an anonymous session.
func SessionOwner(sessionID string) OwnerKey {
	return OwnerKey(fmt.Sprintf("session:%s", sessionID))
}

func (k OwnerKey) String() string {
	return string(k)
}

// TitleLength is how much of the first prompt becomes the conversation title.
const TitleLength = 15

// TitleFromPrompt derives a conversation title from the first user prompt.
func TitleFromPrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= TitleLength {
		return prompt
	}
	return string(runes[:TitleLength])
}
