package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/jackc/pgx/v5/pgtype"
)

type statsRepo struct{}

// NewStatsRepository returns a pgx-backed StatsRepository.
func NewStatsRepository() StatsRepository {
	return &statsRepo{}
}

// DailyAggregates buckets transactions by UTC day. Only COMPLETED rows count toward
// deposits, points spent and claims; TransactionCount includes every status.
func (r *statsRepo) DailyAggregates(ctx context.Context, db DBTX, from, to time.Time) ([]domain.DailyStat, error) {
	rows, err := db.Query(ctx, `
		SELECT to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(amount) FILTER (WHERE type = 'DEPOSIT' AND status = 'COMPLETED'), 0),
		       COUNT(*),
		       COALESCE(-SUM(points) FILTER (WHERE points < 0 AND status = 'COMPLETED'), 0)::bigint,
		       COUNT(*) FILTER (WHERE type = 'CLAIM' AND status = 'COMPLETED')
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1`, from.UTC(), to.UTC().AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("query daily aggregates: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyStat
	for rows.Next() {
		var s domain.DailyStat
		var deposits pgtype.Numeric
		if err := rows.Scan(&s.Date, &deposits, &s.TransactionCount, &s.PointsSpent, &s.Claims); err != nil {
			return nil, fmt.Errorf("scan daily aggregate: %w", err)
		}
		if s.Deposits, err = infra.NumericToDecimal(deposits); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *statsRepo) Dashboard(ctx context.Context, db DBTX, activeSince time.Time) (*domain.DashboardStats, error) {
	var s domain.DashboardStats
	var deposits pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM users),
		  (SELECT COUNT(DISTINCT user_id) FROM transactions WHERE created_at >= $1),
		  (SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = 'DEPOSIT' AND status = 'COMPLETED'),
		  (SELECT COUNT(*) FROM transactions WHERE status = 'PENDING'),
		  (SELECT COUNT(*) FROM fraud_alerts WHERE NOT reviewed),
		  now()`, activeSince).
		Scan(&s.TotalUsers, &s.ActiveUsers, &deposits, &s.PendingTransactions, &s.OpenFraudAlerts, &s.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("query dashboard: %w", err)
	}
	if s.CompletedDeposits, err = infra.NumericToDecimal(deposits); err != nil {
		return nil, err
	}
	return &s, nil
}
