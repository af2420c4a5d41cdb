package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/catalogkit/skuadmin/internal/catalog"
	"github.com/catalogkit/skuadmin/internal/client"
	"github.com/catalogkit/skuadmin/internal/config"
	"github.com/catalogkit/skuadmin/internal/importer"
	"github.com/catalogkit/skuadmin/internal/logging"
	"github.com/catalogkit/skuadmin/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"remote_store", cfg.Remote.BaseURL,
		"poll_interval", cfg.Import.PollInterval,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Remote collaborators
	store := client.NewStore(cfg.Remote.BaseURL, cfg.Remote.Timeout)
	jobs := client.NewJobs(cfg.JobBaseURL(), cfg.Import.SubmitTimeout)

	notifier := catalog.LogNotifier{}
	descriptors := catalog.DefaultDescriptors()

	// Console components
	cache := catalog.NewCache(store, descriptors)
	session := catalog.NewSession(cache, notifier)
	bulk := catalog.NewBulkDeleter(cache, session, notifier)
	tracker := importer.NewTracker(jobs, importer.TrackerOptions{
		PollInterval: cfg.Import.PollInterval,
		Notifier:     notifier,
		Reload:       cache.Load,
	})

	// Warm the cache; a cold start is survivable, the UI can reload.
	ctx := context.Background()
	if err := cache.Load(ctx); err != nil {
		slog.Warn("initial record load failed", "error", err)
	} else {
		slog.Info("records loaded", "count", cache.Len())
	}

	server := web.NewServer(cache, session, bulk, tracker, web.Options{
		RateLimitEnabled:  cfg.Rate.Enabled,
		RequestsPerMinute: cfg.Rate.RequestsPerMinute,
		RequestTimeout:    cfg.Server.RequestTimeout,
		MaxUploadBytes:    cfg.Import.MaxFileSize,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop any active polling loop before the server goes away
		tracker.Cancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
