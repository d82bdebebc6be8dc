package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bingoo/platform/internal/domain"
)

// OutboxStore reads and acknowledges rows of the event_outbox table.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxDraft, error)
	MarkPublished(ctx context.Context, seqIDs []int64) error
}

// EventPublisher delivers one encoded event.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// OutboxRelay polls the outbox and publishes events in sequence order.
// A publish failure stops the batch so later events never overtake earlier ones.
type OutboxRelay struct {
	store     OutboxStore
	publisher EventPublisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxRelay creates a relay.
func NewOutboxRelay(store OutboxStore, publisher EventPublisher, interval time.Duration, batchSize int, logger *slog.Logger) *OutboxRelay {
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run polls until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", "interval", r.interval, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.RelayBatch(ctx); err != nil {
				r.logger.Error("outbox relay error", "error", err)
			}
		}
	}
}

// RelayBatch publishes one batch and returns how many events were acknowledged.
func (r *OutboxRelay) RelayBatch(ctx context.Context) (int, error) {
	events, err := r.store.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(events))
	var publishErr error
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			publishErr = fmt.Errorf("encode event %s: %w", e.EventID, err)
			break
		}
		headers := map[string]string{
			"event_id":       e.EventID.String(),
			"event_type":     string(e.EventType),
			"aggregate_type": string(e.AggregateType),
		}
		if err := r.publisher.Publish(ctx, e.Topic(), []byte(e.PartitionKey), value, headers); err != nil {
			publishErr = fmt.Errorf("publish event %s: %w", e.EventID, err)
			break
		}
		published = append(published, e.SeqID)
	}

	if len(published) > 0 {
		if err := r.store.MarkPublished(ctx, published); err != nil {
			return 0, fmt.Errorf("mark published: %w", err)
		}
		r.logger.Debug("outbox batch relayed", "count", len(published))
	}

	return len(published), publishErr
}
