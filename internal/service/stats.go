package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/report"
	"github.com/bingoo/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	dateLayout       = "2006-01-02"
	maxStatsRangeDay = 366
	activeUserWindow = 30 * 24 * time.Hour
)

// StatsService serves the admin reports.
type StatsService struct {
	pool   *pgxpool.Pool
	stats  repository.StatsRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService creates a StatsService.
func NewStatsService(pool *pgxpool.Pool, stats repository.StatsRepository, logger *slog.Logger) *StatsService {
	return &StatsService{pool: pool, stats: stats, logger: logger, now: time.Now}
}

// ParseStatsRange parses an inclusive YYYY-MM-DD range. Empty bounds default to the
// last 30 days ending today (UTC).
func ParseStatsRange(fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	to := today
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, domain.ErrValidation("to must be YYYY-MM-DD")
		}
		to = t
	}
	from := to.AddDate(0, 0, -29)
	if fromStr != "" {
		f, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, domain.ErrValidation("from must be YYYY-MM-DD")
		}
		from = f
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, domain.ErrValidation("from must not be after to")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > maxStatsRangeDay {
		return time.Time{}, time.Time{}, domain.ErrValidation("range must not exceed 366 days")
	}
	return from, to, nil
}

// FillDailySeries returns one entry per day in [from, to], zero-filling days with no activity.
func FillDailySeries(from, to time.Time, rows []domain.DailyStat) []domain.DailyStat {
	byDate := make(map[string]domain.DailyStat, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}

	var out []domain.DailyStat
	for d := from.UTC().Truncate(24 * time.Hour); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		if r, ok := byDate[key]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, domain.DailyStat{Date: key, Deposits: decimal.Zero})
	}
	return out
}

// Daily returns the contiguous per-day series for an inclusive range.
func (s *StatsService) Daily(ctx context.Context, id domain.Identity, fromStr, toStr string) ([]domain.DailyStat, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	from, to, err := ParseStatsRange(fromStr, toStr, s.now())
	if err != nil {
		return nil, err
	}
	rows, err := s.stats.DailyAggregates(ctx, s.pool, from, to)
	if err != nil {
		return nil, domain.ErrInternal("daily stats", err)
	}
	return FillDailySeries(from, to, rows), nil
}

// ExportDailyXLSX writes the daily series as a spreadsheet.
func (s *StatsService) ExportDailyXLSX(ctx context.Context, id domain.Identity, fromStr, toStr string, w io.Writer) error {
	series, err := s.Daily(ctx, id, fromStr, toStr)
	if err != nil {
		return err
	}
	if err := report.WriteDailyXLSX(w, series); err != nil {
		return domain.ErrInternal("render report", err)
	}
	s.logger.Info("daily report exported", "admin_id", id.UserID, "days", len(series))
	return nil
}

// Dashboard returns headline totals. Active users are those with a transaction in the last 30 days.
func (s *StatsService) Dashboard(ctx context.Context, id domain.Identity) (*domain.DashboardStats, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	d, err := s.stats.Dashboard(ctx, s.pool, s.now().Add(-activeUserWindow))
	if err != nil {
		return nil, domain.ErrInternal("dashboard", err)
	}
	return d, nil
}
