package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/notify"
	"github.com/bingoo/platform/internal/policy"
	"github.com/bingoo/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FraudDetector evaluates a user's recent activity after balance-affecting operations
// and records alerts. Evaluation never blocks or fails the triggering operation.
type FraudDetector struct {
	pool     *pgxpool.Pool
	txRepo   repository.TransactionRepository
	history  repository.GameHistoryRepository
	alerts   repository.FraudAlertRepository
	outbox   repository.OutboxRepository
	notifier notify.FraudNotifier
	inline   bool
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// FraudOptions configures a FraudDetector.
type FraudOptions struct {
	// Inline runs EvaluateAsync in-process; otherwise the fraud worker consumes ledger events.
	Inline  bool
	Timeout time.Duration
}

// NewFraudDetector creates a FraudDetector. A nil notifier disables notifications.
func NewFraudDetector(
	pool *pgxpool.Pool,
	txRepo repository.TransactionRepository,
	history repository.GameHistoryRepository,
	alerts repository.FraudAlertRepository,
	outbox repository.OutboxRepository,
	notifier notify.FraudNotifier,
	opts FraudOptions,
	logger *slog.Logger,
) *FraudDetector {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &FraudDetector{
		pool:     pool,
		txRepo:   txRepo,
		history:  history,
		alerts:   alerts,
		outbox:   outbox,
		notifier: notifier,
		inline:   opts.Inline,
		timeout:  opts.Timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Signals gathers the raw inputs for userID as of now.
func (d *FraudDetector) Signals(ctx context.Context, userID uuid.UUID) (policy.FraudSignals, error) {
	now := d.now()
	count, err := d.txRepo.CountSince(ctx, d.pool, userID, now.Add(-policy.VelocityWindow))
	if err != nil {
		return policy.FraudSignals{}, err
	}
	won, err := d.history.SumWinningsSince(ctx, d.pool, userID, now.Add(-policy.WinningsWindow))
	if err != nil {
		return policy.FraudSignals{}, err
	}
	return policy.FraudSignals{RecentTransactions: count, RecentWinnings: won}, nil
}

// Evaluate checks userID and persists one alert per finding. A finding that already
// has an unreviewed alert of the same type inside its window is not raised again,
// so repeated evaluations during one burst produce a single alert.
func (d *FraudDetector) Evaluate(ctx context.Context, userID uuid.UUID) ([]domain.FraudAlert, error) {
	signals, err := d.Signals(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("gather fraud signals", err)
	}

	findings := policy.EvaluateFraud(signals)
	if len(findings) == 0 {
		return nil, nil
	}

	now := d.now()
	var alerts []domain.FraudAlert
	err = infra.WithTx(ctx, d.pool, func(tx pgx.Tx) error {
		if err := d.alerts.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		for _, f := range findings {
			open, err := d.alerts.HasOpenSince(ctx, tx, userID, f.Type, now.Add(-f.Window))
			if err != nil {
				return err
			}
			if open {
				continue
			}
			a := domain.FraudAlert{UserID: userID, Type: f.Type, Description: f.Description}
			if err := d.alerts.Insert(ctx, tx, &a); err != nil {
				return err
			}
			if err := d.outbox.Insert(ctx, tx, domain.NewFraudAlertEvent(&a)); err != nil {
				return err
			}
			alerts = append(alerts, a)
		}
		return nil
	})
	if err != nil {
		return nil, domain.ErrInternal("record fraud alerts", err)
	}

	for i := range alerts {
		d.logger.Warn("fraud alert raised", "user_id", userID, "type", alerts[i].Type, "alert_id", alerts[i].ID)
		if err := d.notifier.NotifyFraudAlert(ctx, &alerts[i]); err != nil {
			d.logger.Error("fraud notification failed", "alert_id", alerts[i].ID, "error", err)
		}
	}
	return alerts, nil
}

// EvaluateAsync runs Evaluate in the background on a detached context.
// It is a no-op when evaluation is delegated to the fraud worker.
func (d *FraudDetector) EvaluateAsync(userID uuid.UUID) {
	if d == nil || !d.inline {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if _, err := d.Evaluate(ctx, userID); err != nil {
			d.logger.Error("fraud evaluation failed", "user_id", userID, "error", err)
		}
	}()
}

// Wait blocks until every evaluation started by EvaluateAsync has finished.
func (d *FraudDetector) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// ListAlerts returns alerts for admin review.
func (d *FraudDetector) ListAlerts(ctx context.Context, id domain.Identity, reviewed *bool, limit int) ([]domain.FraudAlert, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	alerts, err := d.alerts.List(ctx, d.pool, reviewed, limit)
	if err != nil {
		return nil, domain.ErrInternal("list fraud alerts", err)
	}
	return alerts, nil
}

// Review marks an alert as reviewed.
func (d *FraudDetector) Review(ctx context.Context, id domain.Identity, alertID uuid.UUID) (*domain.FraudAlert, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	a, err := d.alerts.MarkReviewed(ctx, d.pool, alertID)
	if err != nil {
		return nil, domain.ErrInternal("review fraud alert", err)
	}
	if a == nil {
		return nil, domain.ErrNotFound("fraud alert", alertID.String())
	}
	d.logger.Info("fraud alert reviewed", "alert_id", alertID, "admin_id", id.UserID)
	return a, nil
}
