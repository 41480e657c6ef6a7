package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blog-content-api/internal/api"
	"github.com/blog-content-api/internal/auth"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/metrics"
	"github.com/blog-content-api/internal/repository"
	"github.com/blog-content-api/internal/service"
	"github.com/blog-content-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(config.LogConfig{})
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info().Msg("Starting blog content API server...")

	if !cfg.Auth.HasAdminToken() {
		log.Warn().Msg("ADMIN_TOKEN is not set; admin operations will fail as misconfigured")
	}

	recorder := metrics.NewRecorder(nil)

	// Initialize content store
	store := repository.NewFileStore(cfg.Content, log, repository.WithCreateObserver(recorder.ObserveIDAttempts))
	repos := repository.New(store)
	log.Info().Str("content_dir", store.Dir()).Msg("Content store ready")

	// Initialize services
	services := service.NewServices(repos, cfg, recorder, log)

	// Initialize router
	router := api.NewRouter(services, auth.NewGuard(cfg.Auth), recorder, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
