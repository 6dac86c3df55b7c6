package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"beet-chat/backend/internal/relay"
	"beet-chat/backend/internal/store"
	"beet-chat/backend/pkg/config"
	"beet-chat/backend/pkg/errors"
	"beet-chat/backend/pkg/logger"
	"beet-chat/backend/pkg/middleware"
)

// NewRouter wires the middleware chain and chat routes onto a gin engine.
func NewRouter(st store.Store, rl *relay.Relay, log *logger.Logger) *gin.Engine {
	cfg := config.Get()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Identity first so downstream middleware can key on the owner
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.OwnerIdentity())
	engine.Use(logger.Middleware(log))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(corsMiddleware(cfg.Security.AllowedOrigins))

	rlOpts := middleware.DefaultRateLimiterOptions()
	rlOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	rlOpts.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(log, rlOpts)
	engine.Use(rateLimiter.Middleware())

	handler := NewChatHandler(st, rl)

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		v1.GET("/models", handler.ListModels)

		chats := v1.Group("/chats")
		{
			chats.POST("", handler.CreateChat)
			chats.GET("", handler.ListChats)
			chats.GET("/:id", handler.GetChat)
			chats.POST("/:id/messages", handler.AppendPrompt)
			chats.GET("/:id/stream", handler.Stream)
		}
	}

	return engine
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-User-ID, X-Premium-User")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
