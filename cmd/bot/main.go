package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tmarket-bot/internal/catalog"
	"tmarket-bot/internal/config"
	"tmarket-bot/internal/draft"
	"tmarket-bot/internal/image"
	"tmarket-bot/internal/onboarding"
	"tmarket-bot/internal/registry"
	"tmarket-bot/internal/storage"
	"tmarket-bot/internal/submission"
	"tmarket-bot/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	var logLevel slog.Level
	switch cfg.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if cfg.Logging.JSONFormat {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Approval registry and catalog: sqlite when a database path is
	// configured, in-memory otherwise
	var regStore registry.Store
	var catStore catalog.Store
	if cfg.Storage.DatabasePath != "" {
		regStore, err = registry.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Error("failed to open approval registry", "error", err)
			os.Exit(1)
		}
		catStore, err = catalog.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Error("failed to open catalog", "error", err)
			os.Exit(1)
		}
	} else {
		regStore = registry.NewMemoryStore()
		catStore = catalog.NewMemoryStore()
	}
	defer regStore.Close()
	defer catStore.Close()

	// Photo storage
	processor := image.NewProcessor(cfg.Image.JPEGQuality)
	photos, err := storage.NewPhotoStore(cfg.Storage.PhotosDir, processor)
	if err != nil {
		logger.Error("failed to create photo store", "error", err)
		os.Exit(1)
	}

	// Telegram API client
	api, err := telegram.Connect(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}

	messenger := telegram.NewMessenger(api, cfg.Telegram.ChannelID, logger)

	// Workflows
	onboardingSvc := onboarding.NewService(regStore, messenger, cfg.Telegram.AdminIDs, logger)
	submissionSvc := submission.NewService(regStore, draft.NewSessions(), catStore, messenger, logger)

	updateHandler := telegram.NewHandler(api, onboardingSvc, submissionSvc, photos, cfg.Storage.ConditionsImage, logger)
	bot := telegram.NewBot(api, updateHandler, cfg.Telegram, logger)

	// Create root context with cancellation
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// WaitGroup for tracking active goroutines
	var wg sync.WaitGroup

	// Start bot in goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bot.Run(rootCtx); err != nil && err != context.Canceled {
			logger.Error("bot error", "error", err)
		}
	}()

	logger.Info("bot started",
		"admins", cfg.Telegram.AdminIDs,
		"channel", cfg.Telegram.ChannelID,
	)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig)

	// Cancel root context to signal all goroutines
	rootCancel()

	// Wait for graceful shutdown with timeout
	shutdownTimeout := 30 * time.Second
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("graceful shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timeout exceeded, forcing exit")
	}
}
