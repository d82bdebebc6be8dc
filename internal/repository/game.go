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

type gameRepo struct{}

// NewGameRepository returns a pgx-backed GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepo{}
}

func (r *gameRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error) {
	var g domain.Game
	err := db.QueryRow(ctx, `SELECT id, name, reward_points, active FROM games WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.RewardPoints, &g.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	return &g, nil
}

func (r *gameRepo) ListActive(ctx context.Context, db DBTX) ([]domain.Game, error) {
	rows, err := db.Query(ctx, `SELECT id, name, reward_points, active FROM games WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Game])
}

type gameHistoryRepo struct{}

// NewGameHistoryRepository returns a pgx-backed GameHistoryRepository.
func NewGameHistoryRepository() GameHistoryRepository {
	return &gameHistoryRepo{}
}

func (r *gameHistoryRepo) Insert(ctx context.Context, db DBTX, h *domain.GameHistory) error {
	err := db.QueryRow(ctx, `
		INSERT INTO game_history (user_id, game_id, prize_id, transaction_id, won, points, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		h.UserID, h.GameID, h.PrizeID, h.TransactionID, h.Won, h.Points, h.Cost,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert game history: %w", err)
	}
	return nil
}

func (r *gameHistoryRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.GameHistory, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, game_id, prize_id, transaction_id, won, points, cost, created_at
		FROM game_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, clampLimit(limit, 20, 100))
	if err != nil {
		return nil, fmt.Errorf("query game history: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.GameHistory])
}

func (r *gameHistoryRepo) SumWinningsSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (int64, error) {
	var total int64
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)::BIGINT FROM game_history
		WHERE user_id = $1 AND won AND game_id IS NOT NULL AND created_at > $2`,
		userID, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum winnings: %w", err)
	}
	return total, nil
}
