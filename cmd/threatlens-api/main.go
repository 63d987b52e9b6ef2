package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olegrjumin/threatlens/internal/config"
	"github.com/olegrjumin/threatlens/internal/httpapi"
	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/patterns"
	"github.com/olegrjumin/threatlens/internal/service"
	"github.com/olegrjumin/threatlens/internal/session"
)

func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize logger
	logger := logging.New()

	// Load the pattern set; a broken file at startup is fatal, later reloads are not
	initial := patterns.MustCompileDefaults()
	if cfg.PatternsFile != "" {
		set, err := patterns.Load(cfg.PatternsFile)
		if err != nil {
			logger.Error("Failed to load patterns", "path", cfg.PatternsFile, "error", err)
			os.Exit(1)
		}
		initial = set
	}
	store := patterns.NewStore(initial)

	var reloader *patterns.Reloader
	if cfg.PatternsFile != "" {
		reloader = patterns.NewReloader(cfg.PatternsFile, cfg.PatternsReloadInterval, store, logger)
		if cfg.PatternsReloadInterval > 0 {
			reloader.Start()
			logger.Info("Pattern reloader started", "path", cfg.PatternsFile, "interval", cfg.PatternsReloadInterval)
		}
	}

	// Initialize event hub and service
	hub := service.NewHub(cfg.EventBuffer, logger)
	svc := service.New(store, reloader, hub, logger, cfg.Settings)

	// Evict targets whose close event never arrived
	janitor := session.NewJanitor(svc.Manager(), cfg.SessionTTL, cfg.SessionSweepInterval, logger)
	janitor.Start()

	// Create server address from config
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := httpapi.NewServer(addr, logger, svc, hub)

	// Channel to listen for OS signals (Ctrl+C, kill, etc.)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine so it doesn't block
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "patterns_version", store.Version())
		if err := server.ListenAndServe(); err != nil {
			logger.Error("Server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutting down server...")

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	janitor.Stop()
	if reloader != nil {
		reloader.Stop()
	}

	logger.Info("Server stopped gracefully")
}
