// cmd/provisioner-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"session-provisioner/internal/common/airtable"
	"session-provisioner/internal/common/config"
	"session-provisioner/internal/common/database"
	"session-provisioner/internal/common/logger"
	"session-provisioner/internal/common/notion"
	"session-provisioner/internal/common/observability"
	"session-provisioner/internal/common/ratelimit"
	"session-provisioner/internal/server"
)

func main() {
	bootLog := logger.New("info", "console", "stdout")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	zapLog.Info("Starting session provisioner",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("rateLimitBackend", cfg.RateLimit.Backend),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Rate-limit store ---
	var store ratelimit.Store
	var ready func(context.Context) error
	switch cfg.RateLimit.Backend {
	case "redis":
		rdb := database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		if err := rdb.PingWithRetry(ctx, 10, 500*time.Millisecond); err != nil {
			zapLog.Fatal("redis unavailable", zap.Error(err))
		}
		zapLog.Info("Redis connected successfully", zap.String("address", cfg.Database.Redis.Address))
		store = ratelimit.NewRedisStore(rdb.Client)
		ready = rdb.Ping
	default:
		memory := ratelimit.NewMemoryStore()
		go memory.Run(ctx, config.GetWindow(cfg.RateLimit.SweepInterval))
		store = memory
	}

	// --- Provider clients ---
	notionClient, err := notion.NewClient(cfg.Notion)
	if err != nil {
		zapLog.Fatal("notion client init failed", zap.Error(err))
	}
	airtableClient, err := airtable.NewClient(cfg.Airtable)
	if err != nil {
		zapLog.Fatal("airtable client init failed", zap.Error(err))
	}
	zapLog.Info("Provider clients initialized")

	srv, err := server.New(server.Dependencies{
		Config:         cfg,
		Logger:         log,
		Observability:  obs,
		NotionClient:   notionClient,
		AirtableClient: airtableClient,
		Store:          store,
		Ready:          ready,
	})
	if err != nil {
		zapLog.Fatal("server init failed", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Session provisioner stopped")
}
