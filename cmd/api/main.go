package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"

	"authgate/internal/auth"
	"authgate/internal/config"
	transporthttp "authgate/internal/http"
	"authgate/internal/metrics"
	"authgate/internal/platform/database"
	"authgate/internal/platform/logging"
	"authgate/internal/platform/migrate"
	"authgate/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	directory, cleanup, err := buildDirectory(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize user directory", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	provider, err := auth.NewGoogleProvider(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	if err != nil {
		logger.Error("failed to initialize google provider", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenCodec(cfg.SecretKey, cfg.SessionTTL)
	collector := metrics.NewCollector()
	router := transporthttp.NewRouter(cfg, directory, provider, tokens, collector, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("authgate API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildDirectory(ctx context.Context, cfg config.Config, logger *slog.Logger) (users.Directory, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory user directory")
		return users.NewInMemoryDirectory(), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Info("connected to postgres")
	return users.NewPostgresDirectory(db), cleanup, nil
}
