package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-email-service/config"
	_ "portfolio-email-service/docs" // Important for Swagger
	"portfolio-email-service/internal/bootstrap"
	"portfolio-email-service/pkg/logger"
)

// @title           Portfolio Email Service API
// @version         1.0.0
// @description     Contact form gateway for the portfolio site. Sends the owner a notification and the visitor an acknowledgement.
// @host            localhost:5000
// @BasePath        /
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.Environment)
	bootstrap.LogMailConfig(cfg, logger.Log)

	// 3. Wire the service. Missing mail settings are fatal here, never per request.
	app, err := bootstrap.New(cfg, bootstrap.Options{})
	if err != nil {
		logger.Log.Error("Failed to start portfolio email service", "error", err)
		os.Exit(1)
	}
	defer func() { _ = app.Audit.Sync() }()

	// 4. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Starting portfolio email service", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
