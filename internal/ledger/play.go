package ledger

import (
	"context"
	"fmt"

	"github.com/bingoo/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecutePlay charges the play cost and credits the game's reward on a win.
// The net change is written as one GAME_COST row, a Debit for a loss and a Credit for
// a win worth more than the cost; the history row keeps both sides.
func (e *Engine) ExecutePlay(ctx context.Context, tx pgx.Tx, params domain.PlayParams) (*domain.PlayResult, error) {
	if params.Cost <= 0 {
		return nil, domain.ErrValidation("play cost must be positive")
	}

	game, err := e.games.FindByID(ctx, tx, params.GameID)
	if err != nil {
		return nil, fmt.Errorf("play find game: %w", err)
	}
	if game == nil || !game.Active {
		return nil, domain.ErrNotFound("game", params.GameID.String())
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}
	if err := requireActive(user); err != nil {
		return nil, err
	}
	if user.Points < params.Cost {
		return nil, domain.ErrInsufficientPoints()
	}

	var reward int64
	if params.Won {
		reward = game.RewardPoints
	}
	net := reward - params.Cost

	meta := mergeMeta(nil, map[string]interface{}{
		"game_id": game.ID,
		"cost":    params.Cost,
		"reward":  reward,
		"won":     params.Won,
	})

	var posted *domain.CommandResult
	switch {
	case net < 0:
		posted, err = e.Debit(ctx, tx, domain.DebitParams{UserID: user.ID, Points: -net, Type: domain.TxGameCost, Metadata: meta})
	case net > 0:
		posted, err = e.Credit(ctx, tx, domain.CreditParams{UserID: user.ID, Points: net, Type: domain.TxGameCost, Metadata: meta})
	default:
		// Break-even win: the row is kept for the history link, no balance moves.
		posted = &domain.CommandResult{}
		posted.Transaction, posted.User, err = e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
			UserID:   user.ID,
			Type:     domain.TxGameCost,
			Currency: currencyOf(user),
			Metadata: meta,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("play post: %w", err)
	}
	entry := posted.Transaction

	gameID := game.ID
	h := &domain.GameHistory{
		UserID:        user.ID,
		GameID:        &gameID,
		TransactionID: entry.ID,
		Won:           params.Won,
		Points:        reward,
		Cost:          params.Cost,
	}
	if err := e.history.Insert(ctx, tx, h); err != nil {
		return nil, fmt.Errorf("play history: %w", err)
	}

	return &domain.PlayResult{
		History:     h,
		Transaction: entry,
		User:        posted.User,
		Events:      []domain.OutboxDraft{domain.NewTransactionPostedEvent(entry)},
	}, nil
}
