package store

import (
	"context"
	"sync"
	"time"

	"beet-chat/backend/internal/models"
)

// MemoryStore is an in-memory Store used in tests and when running without a
// Redis backend. It mirrors the Redis semantics: append-only transcripts and
// a most-recent-last owner index.
type MemoryStore struct {
	mu          sync.RWMutex
	metadata    map[string]models.Conversation
	transcripts map[string][]models.Message
	ownerIndex  map[models.OwnerKey][]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		metadata:    make(map[string]models.Conversation),
		transcripts: make(map[string][]models.Message),
		ownerIndex:  make(map[models.OwnerKey][]string),
	}
}

func (s *MemoryStore) CreateConversation(_ context.Context, id, modelID string, owner models.OwnerKey, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metadata[id] = models.Conversation{
		ID:        id,
		Model:     modelID,
		OwnerKey:  owner,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	s.ownerIndex[owner] = append(s.ownerIndex[owner], id)
	return nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, id, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcripts[id] = append(s.transcripts[id], models.Message{Role: role, Content: content})
	return nil
}

func (s *MemoryStore) ReadTranscript(_ context.Context, id string, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript := s.transcripts[id]
	if limit > 0 && len(transcript) > limit {
		transcript = transcript[len(transcript)-limit:]
	}
	out := make([]models.Message, len(transcript))
	copy(out, transcript)
	return out, nil
}

func (s *MemoryStore) ReadMetadata(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.metadata[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &conv, nil
}

func (s *MemoryStore) SetModel(_ context.Context, id, modelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.metadata[id]
	if !ok {
		return ErrNotFound
	}
	conv.Model = modelID
	s.metadata[id] = conv
	return nil
}

func (s *MemoryStore) ListConversations(_ context.Context, owner models.OwnerKey, limit int) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.ownerIndex[owner]
	conversations := make([]models.Conversation, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if limit > 0 && len(conversations) == limit {
			break
		}
		if conv, ok := s.metadata[ids[i]]; ok {
			conversations = append(conversations, conv)
		}
	}
	return conversations, nil
}
