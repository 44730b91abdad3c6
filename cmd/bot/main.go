package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandpulse/review-analytics/internal/categories"
	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/monitoring"
	"github.com/brandpulse/review-analytics/internal/notifications"
	"github.com/brandpulse/review-analytics/internal/scheduler"
	"github.com/brandpulse/review-analytics/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Review Analytics")

	ctx := context.Background()

	storageClient, closeStorage, err := newStorage(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStorage()

	// Keyword categories start from the built-in defaults and follow the backend
	categoryStore := categories.NewStore(newKeywordBackend(cfg, storageClient))
	if err := categoryStore.Reload(ctx); err != nil {
		logrus.Warnf("Using default keyword categories: %v", err)
	}

	// Initialize notification services
	notificationService := notifications.NewService(cfg)

	// Initialize monitoring service
	monitoringService := monitoring.NewService(cfg, storageClient, notificationService, categoryStore)

	// Initialize scheduler
	schedulerService, err := scheduler.NewService(cfg, monitoringService, categoryStore)
	if err != nil {
		logrus.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      newRouter(monitoringService),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	schedulerService.Stop()

	// Wait for pending keyword writes
	categoryStore.Flush()

	logrus.Info("Server exited")
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.StorageInterface, func(), error) {
	if cfg.StorageBackend == "azure" {
		s, err := storage.NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}

	s, err := storage.NewSQLiteStorage(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			logrus.Errorf("Failed to close storage: %v", err)
		}
	}, nil
}

func newKeywordBackend(cfg *config.Config, s storage.StorageInterface) categories.Backend {
	if cfg.KeywordBackend == "blob" {
		return categories.NewBlobBackend(s)
	}
	return categories.NewAPIBackend(cfg.BackendURL)
}
