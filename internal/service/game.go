package service

import (
	"context"
	"log/slog"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/ledger"
	"github.com/bingoo/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameService runs game plays and serves play history.
type GameService struct {
	pool    *pgxpool.Pool
	games   repository.GameRepository
	history repository.GameHistoryRepository
	users   repository.UserRepository
	engine  *ledger.Engine
	fraud   *FraudDetector
	logger  *slog.Logger
}

// NewGameService creates a GameService.
func NewGameService(
	pool *pgxpool.Pool,
	games repository.GameRepository,
	history repository.GameHistoryRepository,
	users repository.UserRepository,
	engine *ledger.Engine,
	fraud *FraudDetector,
	logger *slog.Logger,
) *GameService {
	return &GameService{pool: pool, games: games, history: history, users: users, engine: engine, fraud: fraud, logger: logger}
}

// ListGames returns the active game catalog.
func (s *GameService) ListGames(ctx context.Context) ([]domain.Game, error) {
	games, err := s.games.ListActive(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list games", err)
	}
	return games, nil
}

// Play charges the caller's regional points-per-play and records the result.
// The board itself runs client-side; won is the reported outcome.
func (s *GameService) Play(ctx context.Context, id domain.Identity, gameID uuid.UUID, won bool) (*domain.PlayResult, error) {
	user, err := s.users.FindByID(ctx, s.pool, id.UserID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", id.UserID.String())
	}
	cost := regionOf(user).PointsPerPlay

	var result *domain.PlayResult
	err = infra.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		result, err = s.engine.ExecutePlay(ctx, tx, domain.PlayParams{
			UserID: id.UserID,
			GameID: gameID,
			Cost:   cost,
			Won:    won,
		})
		return err
	})
	if err != nil {
		return nil, domain.Classify(err, "play game")
	}

	s.logger.Info("game played", "user_id", id.UserID, "game_id", gameID, "won", won,
		"cost", cost, "points_after", result.User.Points)
	s.fraud.EvaluateAsync(id.UserID)
	return result, nil
}

// History returns the caller's plays and claims, newest first.
func (s *GameService) History(ctx context.Context, id domain.Identity, limit int) ([]domain.GameHistory, error) {
	items, err := s.history.ListByUser(ctx, s.pool, id.UserID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list history", err)
	}
	return items, nil
}
