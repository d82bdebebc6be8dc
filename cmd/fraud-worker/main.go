package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/notify"
	"github.com/bingoo/platform/internal/projection"
	"github.com/bingoo/platform/internal/repository"
	"github.com/bingoo/platform/internal/service"
)

const (
	consumerGroup = "bingoo-fraud-worker"
	debounce      = 30 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fraud worker failed", "error", err)
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

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, string(domain.EventTransactionPosted), consumerGroup, cfg.KafkaEnabled, logger)
	if !consumer.Enabled() {
		return fmt.Errorf("fraud worker requires KAFKA_ENABLED=true")
	}
	defer consumer.Close()

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	var notifier notify.FraudNotifier = notify.Nop{}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		if err != nil {
			return fmt.Errorf("telegram notifier: %w", err)
		}
		notifier = tg
	}

	detector := service.NewFraudDetector(pool,
		repository.NewTransactionRepository(),
		repository.NewGameHistoryRepository(),
		repository.NewFraudAlertRepository(),
		repository.NewOutboxRepository(),
		notifier,
		service.FraudOptions{Timeout: cfg.FraudTimeout},
		logger,
	)

	checks := projection.NewInMemoryStore()
	worker := service.NewFraudWorker(consumer, detector, checks, debounce, logger)

	flushEvery := debounce / 3
	if flushEvery < time.Second {
		flushEvery = time.Second
	}
	go func() {
		sweep := time.NewTicker(time.Minute)
		defer sweep.Stop()
		flush := time.NewTicker(flushEvery)
		defer flush.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sweep.C:
				checks.Sweep()
			case <-flush.C:
				if n := worker.FlushDue(ctx); n > 0 {
					logger.Debug("deferred fraud evaluations", "users", n)
				}
			}
		}
	}()

	return worker.Run(ctx)
}
