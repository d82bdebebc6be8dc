package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fraudAlertRepo struct{}

// NewFraudAlertRepository returns a pgx-backed FraudAlertRepository.
func NewFraudAlertRepository() FraudAlertRepository {
	return &fraudAlertRepo{}
}

func (r *fraudAlertRepo) Insert(ctx context.Context, db DBTX, a *domain.FraudAlert) error {
	err := db.QueryRow(ctx, `
		INSERT INTO fraud_alerts (user_id, type, description)
		VALUES ($1, $2, $3)
		RETURNING id, reviewed, created_at`,
		a.UserID, a.Type, a.Description).Scan(&a.ID, &a.Reviewed, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert fraud alert: %w", err)
	}
	return nil
}

// List returns alerts newest first. A nil reviewed returns both states.
func (r *fraudAlertRepo) List(ctx context.Context, db DBTX, reviewed *bool, limit int) ([]domain.FraudAlert, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, type, description, reviewed, created_at
		FROM fraud_alerts
		WHERE $1::boolean IS NULL OR reviewed = $1
		ORDER BY created_at DESC
		LIMIT $2`, reviewed, clampLimit(limit, 50, 500))
	if err != nil {
		return nil, fmt.Errorf("query fraud alerts: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.FraudAlert])
}

func (r *fraudAlertRepo) MarkReviewed(ctx context.Context, db DBTX, id uuid.UUID) (*domain.FraudAlert, error) {
	var a domain.FraudAlert
	err := db.QueryRow(ctx, `
		UPDATE fraud_alerts SET reviewed = true WHERE id = $1
		RETURNING id, user_id, type, description, reviewed, created_at`, id).
		Scan(&a.ID, &a.UserID, &a.Type, &a.Description, &a.Reviewed, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mark fraud alert reviewed: %w", err)
	}
	return &a, nil
}

// LockUser takes a transaction-scoped advisory lock keyed by the user, so concurrent
// evaluations of one user check and insert alerts one at a time.
func (r *fraudAlertRepo) LockUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('fraud_alert:' || $1::text))`, userID); err != nil {
		return fmt.Errorf("lock fraud alerts for user: %w", err)
	}
	return nil
}

func (r *fraudAlertRepo) HasOpenSince(ctx context.Context, db DBTX, userID uuid.UUID, alertType string, since time.Time) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fraud_alerts
			WHERE user_id = $1 AND type = $2 AND NOT reviewed AND created_at >= $3
		)`, userID, alertType, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check open fraud alerts: %w", err)
	}
	return exists, nil
}
