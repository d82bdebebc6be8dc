package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bingoo/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tournamentSelect = `
	SELECT t.id, t.name, t.status, t.entry_fee, t.max_players,
	       (SELECT COUNT(*) FROM tournament_participants p WHERE p.tournament_id = t.id),
	       t.starts_at, t.created_at
	FROM tournaments t`

type tournamentRepo struct{}

// NewTournamentRepository returns a pgx-backed TournamentRepository.
func NewTournamentRepository() TournamentRepository {
	return &tournamentRepo{}
}

func (r *tournamentRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Tournament, error) {
	return scanTournament(db.QueryRow(ctx, tournamentSelect+` WHERE t.id = $1`, id))
}

// LockForUpdate locks the tournament row, then reads it in a second statement so the
// participant count reflects joins committed while this transaction waited for the lock.
func (r *tournamentRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Tournament, error) {
	var locked uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM tournaments WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock tournament: %w", err)
	}
	return scanTournament(tx.QueryRow(ctx, tournamentSelect+` WHERE t.id = $1`, id))
}

func (r *tournamentRepo) List(ctx context.Context, db DBTX, status domain.TournamentStatus) ([]domain.Tournament, error) {
	var rows pgx.Rows
	var err error
	if status != "" {
		rows, err = db.Query(ctx, tournamentSelect+` WHERE t.status = $1 ORDER BY t.starts_at NULLS LAST, t.created_at DESC`, string(status))
	} else {
		rows, err = db.Query(ctx, tournamentSelect+` ORDER BY t.starts_at NULLS LAST, t.created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("query tournaments: %w", err)
	}
	defer rows.Close()

	var out []domain.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *tournamentRepo) Create(ctx context.Context, db DBTX, in domain.TournamentInput) (*domain.Tournament, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		INSERT INTO tournaments (name, entry_fee, max_players, starts_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		in.Name, in.EntryFee, in.MaxPlayers, in.StartsAt).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert tournament: %w", err)
	}
	return r.FindByID(ctx, db, id)
}

func (r *tournamentRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, from, to domain.TournamentStatus) (*domain.Tournament, error) {
	tag, err := db.Exec(ctx, `UPDATE tournaments SET status = $3 WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("update tournament status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, db, id)
}

func (r *tournamentRepo) AddParticipant(ctx context.Context, db DBTX, tournamentID, userID uuid.UUID) (*domain.TournamentParticipant, error) {
	p := domain.TournamentParticipant{TournamentID: tournamentID, UserID: userID}
	err := db.QueryRow(ctx, `
		INSERT INTO tournament_participants (tournament_id, user_id)
		VALUES ($1, $2)
		RETURNING id, score, created_at`,
		tournamentID, userID).Scan(&p.ID, &p.Score, &p.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyJoined()
		}
		if IsForeignKeyViolation(err) {
			return nil, domain.ErrNotFound("tournament", tournamentID.String())
		}
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	return &p, nil
}

func (r *tournamentRepo) Leaderboard(ctx context.Context, db DBTX, tournamentID uuid.UUID, limit int) ([]domain.TournamentParticipant, error) {
	rows, err := db.Query(ctx, `
		SELECT p.id, p.tournament_id, p.user_id, u.email, p.score, p.created_at
		FROM tournament_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.tournament_id = $1
		ORDER BY p.score DESC, p.created_at ASC
		LIMIT $2`, tournamentID, clampLimit(limit, 100, 1000))
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.TournamentParticipant])
}

func (r *tournamentRepo) UpdateScore(ctx context.Context, db DBTX, tournamentID, userID uuid.UUID, score int64) (*domain.TournamentParticipant, error) {
	p := domain.TournamentParticipant{TournamentID: tournamentID, UserID: userID}
	err := db.QueryRow(ctx, `
		UPDATE tournament_participants SET score = $3
		WHERE tournament_id = $1 AND user_id = $2
		  AND EXISTS (SELECT 1 FROM tournaments WHERE id = $1 AND status = 'IN_PROGRESS')
		RETURNING id, score, created_at`,
		tournamentID, userID, score).Scan(&p.ID, &p.Score, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update score: %w", err)
	}
	return &p, nil
}

func scanTournament(row pgx.Row) (*domain.Tournament, error) {
	var t domain.Tournament
	err := row.Scan(&t.ID, &t.Name, &t.Status, &t.EntryFee, &t.MaxPlayers, &t.Participants, &t.StartsAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan tournament: %w", err)
	}
	return &t, nil
}
