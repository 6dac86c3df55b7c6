// Package store is the conversation store: an append-only per-conversation
// transcript plus a metadata record, indexed per owner. The transcript is the
// source of truth for a conversation; entries are only ever appended.
package store

import (
	"context"
	"errors"

	"beet-chat/backend/internal/models"
)

// ErrNotFound is returned when a conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// Store defines the conversation store operations. An interface so the relay
// and handlers can be tested against a fake.
type Store interface {
	// CreateConversation writes the metadata record and appends the id to
	// the owner's conversation index.
	CreateConversation(ctx context.Context, id, modelID string, owner models.OwnerKey, title string) error

	// AppendMessage appends one entry to the conversation's transcript.
	AppendMessage(ctx context.Context, id, role, content string) error

	// ReadTranscript returns the transcript in order. A positive limit
	// bounds it to the most recent entries.
	ReadTranscript(ctx context.Context, id string, limit int) ([]models.Message, error)

	// ReadMetadata returns the conversation record, or ErrNotFound.
	ReadMetadata(ctx context.Context, id string) (*models.Conversation, error)

	// SetModel updates the conversation's active model.
	SetModel(ctx context.Context, id, modelID string) error

	// ListConversations returns the owner's conversations, most recent
	// first when a positive limit is given.
	ListConversations(ctx context.Context, owner models.OwnerKey, limit int) ([]models.Conversation, error)
}
