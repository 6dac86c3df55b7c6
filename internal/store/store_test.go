package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beet-chat/backend/internal/models"
)

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "chat:abc", chatKey("abc"))
	assert.Equal(t, "messages:abc", messagesKey("abc"))
	assert.Equal(t, "user:zoey:chats", ownerChatsKey(models.UserOwner("zoey")))
	assert.Equal(t, "session:s-1:chats", ownerChatsKey(models.SessionOwner("s-1")))
}

func TestConversationFromFields(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	conv := conversationFromFields("abc", map[string]string{
		"model":     "gpt-oss-20b",
		"createdAt": created.Format(time.RFC3339),
		"ownerKey":  "user:zoey",
		"title":     "hello there",
	})

	assert.Equal(t, "abc", conv.ID)
	assert.Equal(t, "gpt-oss-20b", conv.Model)
	assert.Equal(t, models.OwnerKey("user:zoey"), conv.OwnerKey)
	assert.Equal(t, "hello there", conv.Title)
	assert.Equal(t, created, conv.CreatedAt)
}

func TestMemoryStoreTranscriptOrderAndWindow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.AppendMessage(ctx, "c1", models.RoleUser, "one"))
	require.NoError(t, s.AppendMessage(ctx, "c1", models.RoleAssistant, "two"))
	require.NoError(t, s.AppendMessage(ctx, "c1", models.RoleUser, "three"))

	all, err := s.ReadTranscript(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Content)
	assert.Equal(t, "three", all[2].Content)

	// A bounded read keeps only the most recent entries, still in order
	windowed, err := s.ReadTranscript(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, windowed, 2)
	assert.Equal(t, "two", windowed[0].Content)
	assert.Equal(t, "three", windowed[1].Content)
}

func TestMemoryStoreMetadataLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := models.SessionOwner("s-1")

	_, err := s.ReadMetadata(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.CreateConversation(ctx, "c1", "gpt-oss-20b", owner, "hi"))

	conv, err := s.ReadMetadata(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "gpt-oss-20b", conv.Model)
	assert.Equal(t, owner, conv.OwnerKey)

	// The user switches models between turns
	require.NoError(t, s.SetModel(ctx, "c1", "qwen3-coder-30b"))
	conv, err = s.ReadMetadata(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "qwen3-coder-30b", conv.Model)
}

func TestMemoryStoreListConversations(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := models.UserOwner("zoey")
	other := models.UserOwner("sam")

	require.NoError(t, s.CreateConversation(ctx, "c1", "m", owner, "first"))
	require.NoError(t, s.CreateConversation(ctx, "c2", "m", owner, "second"))
	require.NoError(t, s.CreateConversation(ctx, "c3", "m", other, "elsewhere"))

	// Most recent first when bounded
	list, err := s.ListConversations(ctx, owner, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c2", list[0].ID)

	list, err = s.ListConversations(ctx, owner, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, "c1", list[1].ID)
}
