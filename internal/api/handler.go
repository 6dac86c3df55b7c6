package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"beet-chat/backend/internal/catalog"
	"beet-chat/backend/internal/models"
	"beet-chat/backend/internal/relay"
	"beet-chat/backend/internal/store"
	"beet-chat/backend/pkg/errors"
	"beet-chat/backend/pkg/logger"
	"beet-chat/backend/pkg/middleware"
)

// ChatHandler exposes the conversation store and the streaming relay over
// HTTP. Identity and premium entitlement are resolved upstream; this layer
// only reads what the middleware left in the request context.
type ChatHandler struct {
	store store.Store
	relay *relay.Relay
}

// NewChatHandler creates a new handler.
func NewChatHandler(st store.Store, rl *relay.Relay) *ChatHandler {
	return &ChatHandler{store: st, relay: rl}
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
	Model    string `json:"model"`
}

type conversationResponse struct {
	ID        string `json:"id"`
	Model     string `json:"model"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// CreateChat starts a new conversation from its first prompt. The user
// message is persisted here; the response stream is fetched separately.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}

	owner := middleware.OwnerFrom(c)
	model := catalog.EffectiveModel(req.Model, middleware.IsPremium(c))
	id := uuid.New().String()
	title := models.TitleFromPrompt(req.Question)

	ctx := c.Request.Context()
	if err := h.store.CreateConversation(ctx, id, model.ID, owner, title); err != nil {
		c.Error(errors.NewStorageUnavailableError(err))
		return
	}

	log := logger.FromContext(c).WithConversationID(id)
	if err := h.store.AppendMessage(ctx, id, models.RoleUser, req.Question); err != nil {
		// Losing the persisted copy is preferable to losing the chat flow
		log.LogError(err, "failed to persist first prompt")
	}

	log.Info("started new chat", "model", model.ID, "owner", owner.String())

	c.JSON(http.StatusCreated, conversationResponse{
		ID:    id,
		Model: model.ID,
		Title: title,
	})
}

// AppendPrompt persists the next user turn of an existing conversation and
// records a model switch when the client selected a different one.
func (h *ChatHandler) AppendPrompt(c *gin.Context) {
	id := c.Param("id")

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}

	ctx := c.Request.Context()
	conv, err := h.store.ReadMetadata(ctx, id)
	if err == store.ErrNotFound {
		c.Error(errors.NewConversationNotFoundError(id))
		return
	}
	if err != nil {
		c.Error(errors.NewStorageUnavailableError(err))
		return
	}

	log := logger.FromContext(c).WithConversationID(id)
	if err := h.store.AppendMessage(ctx, id, models.RoleUser, req.Question); err != nil {
		log.LogError(err, "failed to persist prompt")
	}

	model := conv.Model
	if req.Model != "" && req.Model != conv.Model {
		effective := catalog.EffectiveModel(req.Model, middleware.IsPremium(c))
		if effective.ID != conv.Model {
			if err := h.store.SetModel(ctx, id, effective.ID); err != nil {
				log.LogError(err, "failed to record model switch", "model", effective.ID)
			} else {
				model = effective.ID
			}
		}
	}

	c.JSON(http.StatusAccepted, conversationResponse{ID: id, Model: model})
}

// Stream relays one turn: it opens the client-facing event stream and drives
// the provider stream through it. The caller has already persisted the user
// message via AppendPrompt or CreateChat.
func (h *ChatHandler) Stream(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	conv, err := h.store.ReadMetadata(ctx, id)
	if err == store.ErrNotFound {
		c.Error(errors.NewConversationNotFoundError(id))
		return
	}
	if err != nil {
		c.Error(errors.NewStorageUnavailableError(err))
		return
	}

	requested := c.Query("model")
	if requested == "" {
		requested = conv.Model
	}

	w := relay.NewHTTPFrameWriter(c.Writer)
	if err := h.relay.Run(ctx, id, requested, middleware.IsPremium(c), w); err != nil {
		// Once the stream has opened the contract is append-only; the
		// error handler only renders a body when nothing was written.
		c.Error(err)
	}
}

// ListChats returns the owner's conversations, most recent first.
func (h *ChatHandler) ListChats(c *gin.Context) {
	owner := middleware.OwnerFrom(c)

	limit := 0
	if raw, ok := c.GetQuery("limit"); ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	conversations, err := h.store.ListConversations(c.Request.Context(), owner, limit)
	if err != nil {
		c.Error(errors.NewStorageUnavailableError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": conversations})
}

// GetChat returns a conversation's metadata and full transcript.
func (h *ChatHandler) GetChat(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	conv, err := h.store.ReadMetadata(ctx, id)
	if err == store.ErrNotFound {
		c.Error(errors.NewConversationNotFoundError(id))
		return
	}
	if err != nil {
		c.Error(errors.NewStorageUnavailableError(err))
		return
	}

	transcript, err := h.store.ReadTranscript(ctx, id, 0)
	if err != nil {
		c.Error(errors.NewStorageUnavailableError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
		"messages":     transcript,
		"modelGroups":  catalog.Groups(conv.Model, middleware.IsPremium(c)),
	})
}

// ListModels returns the model picker groups for the caller's tier.
func (h *ChatHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"modelGroups": catalog.Groups(c.Query("selected"), middleware.IsPremium(c)),
	})
}
