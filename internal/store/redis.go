package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"beet-chat/backend/internal/models"
	"beet-chat/backend/pkg/cache"
	"beet-chat/backend/pkg/config"
)

// Redis key layout:
//
//	chat:<id>       hash  model, createdAt, ownerKey, title
//	messages:<id>   list  JSON {role, content} records, append-only
//	<ownerKey>:chats list conversation ids, most-recent-last
func chatKey(id string) string     { return "chat:" + id }
func messagesKey(id string) string { return "messages:" + id }
func ownerChatsKey(owner models.OwnerKey) string {
	return owner.String() + ":chats"
}

// RedisStore implements Store on a Redis list/hash layout. Recently read
// metadata is cached in memory; SetModel is the only mutation after creation
// and invalidates the cached record.
type RedisStore struct {
	client   *redis.Client
	metaLRU  *cache.Cache
	useCache bool
}

// NewRedisStore connects to Redis using the application config.
func NewRedisStore() *RedisStore {
	cfg := config.Get()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return NewRedisStoreWithClient(client, cfg.Cache.Enabled)
}

// NewRedisStoreWithClient builds a store around an existing client.
func NewRedisStoreWithClient(client *redis.Client, enableCache bool) *RedisStore {
	s := &RedisStore{client: client, useCache: enableCache}
	if enableCache {
		s.metaLRU = cache.NewCache()
	}
	return s
}

// Ping verifies the backing store is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) CreateConversation(ctx context.Context, id, modelID string, owner models.OwnerKey, title string) error {
	createdAt := time.Now().UTC()

	err := s.client.HSet(ctx, chatKey(id), map[string]interface{}{
		"model":     modelID,
		"createdAt": createdAt.Format(time.RFC3339),
		"ownerKey":  owner.String(),
		"title":     title,
	}).Err()
	if err != nil {
		return fmt.Errorf("create conversation %s: %w", id, err)
	}

	if err := s.client.RPush(ctx, ownerChatsKey(owner), id).Err(); err != nil {
		return fmt.Errorf("index conversation %s for %s: %w", id, owner, err)
	}

	if s.useCache {
		s.metaLRU.Set(id, &models.Conversation{
			ID:        id,
			Model:     modelID,
			OwnerKey:  owner,
			Title:     title,
			CreatedAt: createdAt,
		})
	}
	return nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, id, role, content string) error {
	record, err := json.Marshal(models.Message{Role: role, Content: content})
	if err != nil {
		return fmt.Errorf("encode message for %s: %w", id, err)
	}
	if err := s.client.RPush(ctx, messagesKey(id), record).Err(); err != nil {
		return fmt.Errorf("append message to %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) ReadTranscript(ctx context.Context, id string, limit int) ([]models.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raw, err := s.client.LRange(ctx, messagesKey(id), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read transcript of %s: %w", id, err)
	}

	messages := make([]models.Message, 0, len(raw))
	for _, entry := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			// A corrupt record should not make the whole transcript
			// unreadable; skip it.
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisStore) ReadMetadata(ctx context.Context, id string) (*models.Conversation, error) {
	if s.useCache {
		if cached, ok := s.metaLRU.Get(id); ok {
			return cached.(*models.Conversation), nil
		}
	}

	fields, err := s.client.HGetAll(ctx, chatKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("read metadata of %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	conv := conversationFromFields(id, fields)
	if s.useCache {
		s.metaLRU.Set(id, conv)
	}
	return conv, nil
}

func (s *RedisStore) SetModel(ctx context.Context, id, modelID string) error {
	if err := s.client.HSet(ctx, chatKey(id), "model", modelID).Err(); err != nil {
		return fmt.Errorf("set model of %s: %w", id, err)
	}
	if s.useCache {
		s.metaLRU.Delete(id)
	}
	return nil
}

func (s *RedisStore) ListConversations(ctx context.Context, owner models.OwnerKey, limit int) ([]models.Conversation, error) {
	ids, err := s.client.LRange(ctx, ownerChatsKey(owner), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list conversations of %s: %w", owner, err)
	}

	// Index is most-recent-last; walk it backwards so a bounded listing
	// returns the newest conversations first.
	conversations := make([]models.Conversation, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if limit > 0 && len(conversations) == limit {
			break
		}
		conv, err := s.ReadMetadata(ctx, ids[i])
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}
	return conversations, nil
}

func conversationFromFields(id string, fields map[string]string) *models.Conversation {
	createdAt, _ := time.Parse(time.RFC3339, fields["createdAt"])
	return &models.Conversation{
		ID:        id,
		Model:     fields["model"],
		OwnerKey:  models.OwnerKey(fields["ownerKey"]),
		Title:     fields["title"],
		CreatedAt: createdAt,
	}
}
