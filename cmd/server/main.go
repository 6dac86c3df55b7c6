package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"beet-chat/backend/internal/api"
	"beet-chat/backend/internal/provider"
	"beet-chat/backend/internal/relay"
	"beet-chat/backend/internal/store"
	"beet-chat/backend/pkg/config"
	"beet-chat/backend/pkg/logger"
	"beet-chat/backend/shared/observability"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := config.Get()

	logConfig := logger.DefaultConfig()
	appLogger := logger.New(logConfig)
	logger.SetGlobal(appLogger)

	shutdownTracing := observability.SetupTracing("beet-chat-backend")
	defer shutdownTracing()
	observability.SetupPrometheusMetrics()

	st := store.NewRedisStore()
	defer st.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := st.Ping(pingCtx); err != nil {
		pingCancel()
		appLogger.LogError(err, "failed to reach redis", "addr", cfg.Redis.Addr)
		os.Exit(1)
	}
	pingCancel()
	appLogger.Info("connected to redis", "addr", cfg.Redis.Addr)

	rl := relay.New(st, provider.NewClient(), appLogger, relay.Options{})
	engine := api.NewRouter(st, rl, appLogger)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	go func() {
		appLogger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.LogError(err, "failed to start server")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	appLogger.Info("shutting down server")
	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(err, "failed to shutdown server")
		os.Exit(1)
	}

	appLogger.Info("server shutdown complete")
}
