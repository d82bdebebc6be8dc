package ledger

import (
	"context"
	"fmt"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/policy"
	"github.com/jackc/pgx/v5"
)

// ExecuteClaim exchanges points for a prize. The prize row is locked before the user
// so concurrent claims on the last unit serialize; the loser sees PRIZE_UNAVAILABLE.
// On success exactly one CLAIM transaction and one history row are written.
func (e *Engine) ExecuteClaim(ctx context.Context, tx pgx.Tx, params domain.ClaimParams) (*domain.ClaimResult, error) {
	prize, err := e.prizes.LockForUpdate(ctx, tx, params.PrizeID)
	if err != nil {
		return nil, fmt.Errorf("claim lock prize: %w", err)
	}
	if prize == nil {
		return nil, domain.ErrNotFound("prize", params.PrizeID.String())
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	if err := requireActive(user); err != nil {
		return nil, err
	}
	if err := policy.CheckClaim(prize, user); err != nil {
		return nil, err
	}

	consumed, err := e.prizes.ConsumeStock(ctx, tx, prize.ID)
	if err != nil {
		return nil, fmt.Errorf("claim consume stock: %w", err)
	}
	if consumed == nil {
		return nil, domain.ErrPrizeUnavailable("prize is out of stock")
	}

	debit, err := e.Debit(ctx, tx, domain.DebitParams{
		UserID: user.ID,
		Points: prize.PointValue,
		Type:   domain.TxClaim,
		Metadata: mergeMeta(nil, map[string]interface{}{
			"prize_id":   prize.ID,
			"prize_name": prize.Name,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	entry := debit.Transaction

	prizeID := prize.ID
	h := &domain.GameHistory{
		UserID:        user.ID,
		PrizeID:       &prizeID,
		TransactionID: entry.ID,
		Won:           true,
		Points:        prize.PointValue,
	}
	if err := e.history.Insert(ctx, tx, h); err != nil {
		return nil, fmt.Errorf("claim history: %w", err)
	}

	claimed := domain.NewPrizeClaimedEvent(h, consumed)
	if err := e.emit(ctx, tx, claimed); err != nil {
		return nil, err
	}

	return &domain.ClaimResult{
		History:     h,
		Transaction: entry,
		User:        debit.User,
		Prize:       consumed,
		Events:      append(debit.Events, claimed),
	}, nil
}
