package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
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

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	if !producer.Enabled() {
		logger.Warn("kafka disabled; events are marked published without delivery")
	}

	store := repository.NewOutboxStore(pool, repository.NewOutboxRepository())
	relay := infra.NewOutboxRelay(store, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize, logger)
	relay.Run(ctx)
	return nil
}
