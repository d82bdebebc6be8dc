package ledger

import (
	"context"
	"fmt"

	"github.com/bingoo/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OpenDeposit records a PENDING deposit. Nothing is credited until the provider
// reports the outcome through ExecuteSettleDeposit.
func (e *Engine) OpenDeposit(ctx context.Context, tx pgx.Tx, params domain.OpenDepositParams) (*domain.Transaction, error) {
	if err := domain.ValidatePositivePoints(params.Points); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if !params.Amount.IsPositive() {
		return nil, domain.ErrValidation("deposit amount must be positive")
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("open deposit: %w", err)
	}
	if err := requireActive(user); err != nil {
		return nil, err
	}

	entry, err := e.transactions.Insert(ctx, tx, domain.PostLedgerEntryParams{
		UserID:   params.UserID,
		Type:     domain.TxDeposit,
		Points:   params.Points,
		Amount:   params.Amount,
		Currency: params.Currency,
		Provider: strPtr(params.Provider),
		Metadata: ensureJSON(nil),
	}, domain.TxStatusPending)
	if err != nil {
		return nil, fmt.Errorf("insert pending deposit: %w", err)
	}

	if err := e.emit(ctx, tx, domain.NewTransactionPostedEvent(entry)); err != nil {
		return nil, err
	}
	return entry, nil
}

// ExecuteSettleDeposit records the provider's declared outcome for a PENDING deposit.
// COMPLETED credits points and monetary balance on the same row; FAILED changes
// nothing but the status. A settled deposit returns CONFLICT and is never re-applied.
func (e *Engine) ExecuteSettleDeposit(ctx context.Context, tx pgx.Tx, params domain.SettleDepositParams) (*domain.CommandResult, error) {
	if params.Outcome != domain.TxStatusCompleted && params.Outcome != domain.TxStatusFailed {
		return nil, domain.ErrValidation(fmt.Sprintf("invalid settlement outcome: %s", params.Outcome))
	}

	pending, err := e.lockDeposit(ctx, tx, params.TransactionID)
	if err != nil {
		return nil, err
	}
	if !pending.Status.CanTransition(params.Outcome) {
		return nil, domain.ErrConflict(fmt.Sprintf("transaction already %s", pending.Status))
	}

	user, err := e.LockUserForUpdate(ctx, tx, pending.UserID)
	if err != nil {
		return nil, fmt.Errorf("settle deposit: %w", err)
	}

	if params.Outcome == domain.TxStatusCompleted {
		updated, err := e.users.UpdateBalances(ctx, tx, user.ID, domain.BalanceUpdate{
			Points:  pending.Points,
			Balance: pending.Amount,
		})
		if err != nil {
			return nil, fmt.Errorf("credit deposit: %w", err)
		}
		if updated == nil {
			return nil, domain.ErrInternal("deposit credit did not apply", nil)
		}
		user = updated
	}

	settled, err := e.transactions.Settle(ctx, tx, pending.ID, params.Outcome, strPtr(params.ProviderRef))
	if err != nil {
		return nil, fmt.Errorf("settle transaction: %w", err)
	}
	if settled == nil {
		return nil, domain.ErrConflict("transaction is no longer pending")
	}

	event := domain.NewTransactionSettledEvent(settled)
	if err := e.emit(ctx, tx, event); err != nil {
		return nil, err
	}

	return &domain.CommandResult{
		Transaction: settled,
		User:        user,
		Events:      []domain.OutboxDraft{event},
	}, nil
}

// ExecuteRefund reverses a COMPLETED deposit with a WITHDRAWAL Debit of both the
// credited points and the monetary amount. A deposit can be refunded once.
func (e *Engine) ExecuteRefund(ctx context.Context, tx pgx.Tx, params domain.RefundParams) (*domain.CommandResult, error) {
	deposit, err := e.lockDeposit(ctx, tx, params.DepositID)
	if err != nil {
		return nil, err
	}
	if deposit.Status != domain.TxStatusCompleted {
		return nil, domain.ErrConflict("only completed deposits can be refunded")
	}

	existing, err := e.transactions.FindRefundOf(ctx, tx, deposit.ID)
	if err != nil {
		return nil, fmt.Errorf("refund lookup: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("deposit already refunded")
	}

	var provider string
	if deposit.Provider != nil {
		provider = *deposit.Provider
	}
	result, err := e.Debit(ctx, tx, domain.DebitParams{
		UserID:   deposit.UserID,
		Points:   deposit.Points,
		Type:     domain.TxWithdrawal,
		Amount:   deposit.Amount,
		Currency: deposit.Currency,
		Provider: provider,
		Metadata: mergeMeta(nil, map[string]interface{}{
			"refund_of": deposit.ID.String(),
			"admin_id":  params.AdminID,
			"reason":    params.Reason,
		}),
		Correction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("refund: %w", err)
	}
	return result, nil
}

func (e *Engine) lockDeposit(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	t, err := e.transactions.LockForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("lock transaction: %w", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("transaction", id.String())
	}
	if t.Type != domain.TxDeposit {
		return nil, domain.ErrValidation(fmt.Sprintf("transaction %s is not a deposit", id))
	}
	return t, nil
}
