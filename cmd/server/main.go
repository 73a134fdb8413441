package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/floodyboy/sync-party/internal/config"
	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet
		println("failed to load configuration:", err.Error())
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer database.Close()

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to get database handle for migrations")
	}
	if err := db.RunMigrations(sqlDB, "file://./migrations"); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		logger.Log.Fatal().Err(err).Str("dir", cfg.Uploads.Dir).Msg("Failed to create upload root")
	}

	srv := server.New(cfg, database)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		logger.Log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
