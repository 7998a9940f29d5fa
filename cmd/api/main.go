package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmg/memehub/internal/api"
	"github.com/cmg/memehub/internal/config"
	"github.com/cmg/memehub/internal/logger"
	"github.com/cmg/memehub/internal/ocr"
	"github.com/cmg/memehub/internal/repository"
	"github.com/cmg/memehub/internal/service"
)

func main() {
	// Initialize logger
	log := logger.NewDefault()
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := repository.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repository.Close(db)

	memeRepo := repository.NewMemeRepository(db)

	// Initialize the OCR capability and the outbound image fetcher
	extractor := ocr.NewClient(&ocr.Config{
		Endpoint: cfg.OCR.Endpoint,
		APIKey:   cfg.OCR.APIKey,
		Timeout:  cfg.OCR.Timeout,
	})
	fetcher := service.NewHTTPImageFetcher(&service.FetcherConfig{
		Timeout:  cfg.Ingest.FetchTimeout,
		MaxBytes: cfg.Ingest.MaxImageBytes,
	})

	// Initialize services
	ingestService := service.NewIngestService(memeRepo, fetcher, extractor, log, &service.IngestConfig{
		DefaultLanguage: cfg.OCR.Language,
	})
	memeService := service.NewMemeService(memeRepo, log)

	// Setup router
	router := api.SetupRouter(ingestService, memeService, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting API server on port %d (mode=%s, db=%s)",
			cfg.Server.Port, cfg.Server.Mode, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
