package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealsnap/internal/analysis"
	"mealsnap/internal/cache"
	"mealsnap/internal/config"
	"mealsnap/internal/database"
	"mealsnap/internal/handler"
	"mealsnap/internal/repository"
	"mealsnap/internal/router"
	"mealsnap/internal/service"
	"mealsnap/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting mealsnap API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize meal repository and bootstrap the schema
	mealRepo := repository.NewMealRepository(pool, logger)
	if err := mealRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	// Initialize image storage; a failed S3 setup falls back to the
	// local uploads directory so the service can still ingest.
	var imageStore storage.ImageStore
	uploadsDir := ""

	if cfg.Storage.Backend == "s3" {
		imageStore, err = storage.NewS3Store(ctx,
			cfg.Storage.S3Bucket,
			cfg.Storage.S3Region,
			cfg.Storage.S3Prefix,
			cfg.Storage.S3BaseURL,
			logger,
		)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 image store, falling back to local storage")
		}
	}

	if imageStore == nil {
		imageStore, err = storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.URLPrefix, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize image storage: %w", err)
		}
		uploadsDir = cfg.Storage.LocalDir
		logger.Info().
			Str("dir", cfg.Storage.LocalDir).
			Msg("using local file system for meal images")
	}

	// Initialize the vision-analysis client
	analyzer := analysis.NewClient(cfg.Analysis, logger)

	// Initialize the meal-list cache and service
	listCache := cache.NewMealListCache(logger)
	mealService := service.NewMealService(mealRepo, imageStore, analyzer, listCache, logger)

	// Initialize HTTP handlers and router
	mealHandler := handler.NewMealHandler(mealService, logger)
	mux := router.New(mealHandler, uploadsDir, cfg.Storage.URLPrefix, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
