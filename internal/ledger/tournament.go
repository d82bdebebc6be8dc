package ledger

import (
	"context"
	"fmt"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/policy"
	"github.com/jackc/pgx/v5"
)

// ExecuteJoin enrolls a user in a tournament and debits the entry fee.
// The tournament row lock makes the capacity check and the insert atomic.
// Free tournaments write no transaction row.
func (e *Engine) ExecuteJoin(ctx context.Context, tx pgx.Tx, params domain.JoinParams) (*domain.JoinResult, error) {
	t, err := e.tournaments.LockForUpdate(ctx, tx, params.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("join lock tournament: %w", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("tournament", params.TournamentID.String())
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	if err := requireActive(user); err != nil {
		return nil, err
	}
	if err := policy.CheckJoin(t, user.Points); err != nil {
		return nil, err
	}

	participant, err := e.tournaments.AddParticipant(ctx, tx, t.ID, user.ID)
	if err != nil {
		return nil, err
	}
	t.Participants++

	result := &domain.JoinResult{Participant: participant, Tournament: t, User: user}

	if t.EntryFee > 0 {
		fee, err := e.Debit(ctx, tx, domain.DebitParams{
			UserID: user.ID,
			Points: t.EntryFee,
			Type:   domain.TxTournamentEntry,
			Metadata: mergeMeta(nil, map[string]interface{}{
				"tournament_id": t.ID,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("join entry fee: %w", err)
		}
		result.Transaction = fee.Transaction
		result.User = fee.User
		result.Events = append(result.Events, fee.Events...)
	}

	joined := domain.NewTournamentJoinedEvent(participant, t.EntryFee)
	if err := e.emit(ctx, tx, joined); err != nil {
		return nil, err
	}
	result.Events = append(result.Events, joined)

	return result, nil
}
