package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/bingoo/platform/internal/ledger"
	"github.com/bingoo/platform/internal/policy"
	"github.com/bingoo/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TournamentService manages tournaments and enrollment.
type TournamentService struct {
	pool        *pgxpool.Pool
	tournaments repository.TournamentRepository
	engine      *ledger.Engine
	fraud       *FraudDetector
	logger      *slog.Logger
}

// NewTournamentService creates a TournamentService.
func NewTournamentService(
	pool *pgxpool.Pool,
	tournaments repository.TournamentRepository,
	engine *ledger.Engine,
	fraud *FraudDetector,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{pool: pool, tournaments: tournaments, engine: engine, fraud: fraud, logger: logger}
}

// List returns tournaments, optionally filtered by status.
func (s *TournamentService) List(ctx context.Context, status domain.TournamentStatus) ([]domain.Tournament, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrValidation("unknown tournament status")
	}
	items, err := s.tournaments.List(ctx, s.pool, status)
	if err != nil {
		return nil, domain.ErrInternal("list tournaments", err)
	}
	return items, nil
}

// Get returns one tournament.
func (s *TournamentService) Get(ctx context.Context, tournamentID uuid.UUID) (*domain.Tournament, error) {
	t, err := s.tournaments.FindByID(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("find tournament", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("tournament", tournamentID.String())
	}
	return t, nil
}

// Join enrolls the caller and charges the entry fee.
func (s *TournamentService) Join(ctx context.Context, id domain.Identity, tournamentID uuid.UUID) (*domain.JoinResult, error) {
	var result *domain.JoinResult
	err := infra.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		result, err = s.engine.ExecuteJoin(ctx, tx, domain.JoinParams{UserID: id.UserID, TournamentID: tournamentID})
		return err
	})
	if err != nil {
		return nil, domain.Classify(err, "join tournament")
	}
	s.logger.Info("tournament joined", "user_id", id.UserID, "tournament_id", tournamentID,
		"entry_fee", result.Tournament.EntryFee, "participants", result.Tournament.Participants)
	if result.Transaction != nil {
		s.fraud.EvaluateAsync(id.UserID)
	}
	return result, nil
}

// Leaderboard lists participants by score.
func (s *TournamentService) Leaderboard(ctx context.Context, tournamentID uuid.UUID, limit int) ([]domain.TournamentParticipant, error) {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}
	items, err := s.tournaments.Leaderboard(ctx, s.pool, tournamentID, limit)
	if err != nil {
		return nil, domain.ErrInternal("leaderboard", err)
	}
	return items, nil
}

// Participants is the admin view of the leaderboard.
func (s *TournamentService) Participants(ctx context.Context, id domain.Identity, tournamentID uuid.UUID) ([]domain.TournamentParticipant, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.Leaderboard(ctx, tournamentID, 500)
}

// Create opens a new tournament in REGISTERING.
func (s *TournamentService) Create(ctx context.Context, id domain.Identity, in domain.TournamentInput) (*domain.Tournament, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	in.Name = policy.CleanText(in.Name, 200)
	if err := domain.ValidateTournamentInput(in); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	t, err := s.tournaments.Create(ctx, s.pool, in)
	if err != nil {
		return nil, domain.ErrInternal("create tournament", err)
	}
	s.logger.Info("tournament created", "tournament_id", t.ID, "admin_id", id.UserID)
	return t, nil
}

// UpdateStatus moves a tournament along its lifecycle.
func (s *TournamentService) UpdateStatus(ctx context.Context, id domain.Identity, tournamentID uuid.UUID, next domain.TournamentStatus) (*domain.Tournament, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, domain.ErrValidation("unknown tournament status")
	}
	current, err := s.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(next) {
		return nil, domain.ErrConflict(fmt.Sprintf("cannot move tournament from %s to %s", current.Status, next))
	}
	t, err := s.tournaments.UpdateStatus(ctx, s.pool, tournamentID, current.Status, next)
	if err != nil {
		return nil, domain.ErrInternal("update tournament status", err)
	}
	if t == nil {
		return nil, domain.ErrConflict("tournament status changed concurrently")
	}
	s.logger.Info("tournament status changed", "tournament_id", tournamentID,
		"from", current.Status, "to", next, "admin_id", id.UserID)
	return t, nil
}

// SetScore records a participant's score while the tournament is running.
// The status guard lives in the UPDATE, so a concurrent transition cannot slip in between.
func (s *TournamentService) SetScore(ctx context.Context, id domain.Identity, tournamentID, userID uuid.UUID, score int64) (*domain.TournamentParticipant, error) {
	if err := id.RequireAdmin(); err != nil {
		return nil, err
	}
	if score < 0 {
		return nil, domain.ErrValidation("score must not be negative")
	}
	p, err := s.tournaments.UpdateScore(ctx, s.pool, tournamentID, userID, score)
	if err != nil {
		return nil, domain.ErrInternal("update score", err)
	}
	if p != nil {
		return p, nil
	}

	t, err := s.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TournamentInProgress {
		return nil, domain.ErrConflict("scores can only change while the tournament is in progress")
	}
	return nil, domain.ErrNotFound("participant", userID.String())
}
