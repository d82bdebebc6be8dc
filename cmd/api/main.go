package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bingoo/platform/internal/app"
	"github.com/bingoo/platform/internal/auth"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/notify"
	"github.com/bingoo/platform/internal/provider"
	"github.com/bingoo/platform/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := infra.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := infra.RunMigrations(cfg.DSN(), cfg.MigrationsDir, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	var notifier notify.FraudNotifier = notify.Nop{}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		if err != nil {
			return fmt.Errorf("telegram notifier: %w", err)
		}
		notifier = tg
		logger.Info("telegram fraud notifications enabled", "chat_id", cfg.TelegramChatID)
	}

	fraud := app.NewFraudDetector(pool, notifier, service.FraudOptions{
		Inline:  cfg.FraudInline,
		Timeout: cfg.FraudTimeout,
	}, logger)

	router := app.NewRouter(app.RouterDeps{
		Pool:               pool,
		JWTMgr:             auth.NewJWTManager(cfg.JWTSecret, cfg.JWTUserExpiry, cfg.JWTAdminExpiry),
		Logger:             logger,
		Gateway:            provider.NewPayPalProvider(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalTimeout),
		FraudDetector:      fraud,
		CORSOrigin:         cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	fraud.Wait()

	logger.Info("server stopped gracefully")
	return nil
}
