package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/projection"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageSource is the consumer side of a Kafka topic.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// FraudEvaluator evaluates one user.
type FraudEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID) ([]domain.FraudAlert, error)
}

// FraudWorker evaluates users out of band from relayed ledger events.
//
// The first event for a user is evaluated at once and opens a debounce window.
// Later events inside the window only mark the user pending; FlushDue evaluates
// pending users once their window has closed, so the last event of a burst is
// always evaluated.
type FraudWorker struct {
	source    MessageSource
	evaluator FraudEvaluator
	checks    projection.Store
	debounce  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending map[uuid.UUID]time.Time // user -> time the window closes
}

// NewFraudWorker creates a FraudWorker.
func NewFraudWorker(source MessageSource, evaluator FraudEvaluator, checks projection.Store, debounce time.Duration, logger *slog.Logger) *FraudWorker {
	return &FraudWorker{
		source:    source,
		evaluator: evaluator,
		checks:    checks,
		debounce:  debounce,
		logger:    logger,
		now:       time.Now,
		pending:   make(map[uuid.UUID]time.Time),
	}
}

// Run consumes until ctx is cancelled. Messages are committed after handling;
// a failed evaluation is logged and committed so one bad user cannot stall the partition.
func (w *FraudWorker) Run(ctx context.Context) error {
	w.logger.Info("fraud worker started", "debounce", w.debounce)
	for {
		msg, err := w.source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("fraud worker stopped")
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := w.Handle(ctx, msg.Value); err != nil {
			w.logger.Error("fraud evaluation failed", "offset", msg.Offset, "error", err)
		}
		if err := w.source.Commit(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// Handle evaluates the user behind one relayed outbox event, or defers the
// evaluation to FlushDue while the user's debounce window is open.
func (w *FraudWorker) Handle(ctx context.Context, value []byte) error {
	userID, err := userIDFromEvent(value)
	if err != nil {
		return err
	}

	last, err := projection.LastFraudCheck(ctx, w.checks, userID)
	if err != nil {
		return fmt.Errorf("read fraud check: %w", err)
	}
	if last != nil {
		due := last.EvaluatedAt.Add(w.debounce)
		if w.now().Before(due) {
			w.mu.Lock()
			w.pending[userID] = due
			w.mu.Unlock()
			return nil
		}
	}

	w.mu.Lock()
	delete(w.pending, userID)
	w.mu.Unlock()
	return w.evaluate(ctx, userID)
}

// FlushDue evaluates every pending user whose debounce window has closed and
// returns how many were evaluated. A failed evaluation forgets the user's last
// check so the next event for that user is evaluated immediately.
func (w *FraudWorker) FlushDue(ctx context.Context) int {
	now := w.now()
	var due []uuid.UUID
	w.mu.Lock()
	for userID, at := range w.pending {
		if !now.Before(at) {
			due = append(due, userID)
			delete(w.pending, userID)
		}
	}
	w.mu.Unlock()

	for _, userID := range due {
		if err := w.evaluate(ctx, userID); err != nil {
			w.logger.Error("deferred fraud evaluation failed", "user_id", userID, "error", err)
			if err := projection.ForgetFraudCheck(ctx, w.checks, userID); err != nil {
				w.logger.Error("forget fraud check", "user_id", userID, "error", err)
			}
		}
	}
	return len(due)
}

// Pending returns the number of users waiting for a deferred evaluation.
func (w *FraudWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *FraudWorker) evaluate(ctx context.Context, userID uuid.UUID) error {
	alerts, err := w.evaluator.Evaluate(ctx, userID)
	if err != nil {
		return err
	}
	return projection.RecordFraudCheck(ctx, w.checks, projection.FraudCheck{
		UserID:      userID,
		Alerts:      len(alerts),
		EvaluatedAt: w.now(),
	}, w.debounce)
}

func userIDFromEvent(value []byte) (uuid.UUID, error) {
	var evt domain.OutboxDraft
	if err := json.Unmarshal(value, &evt); err != nil {
		return uuid.Nil, fmt.Errorf("decode event: %w", err)
	}
	var payload struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return uuid.Nil, fmt.Errorf("decode payload of %s: %w", evt.EventID, err)
	}
	if payload.UserID == uuid.Nil {
		return uuid.Nil, errors.New("event has no user_id")
	}
	return payload.UserID, nil
}
