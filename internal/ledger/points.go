package ledger

import (
	"context"
	"fmt"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/policy"
	"github.com/jackc/pgx/v5"
)

// Credit adds points, and optionally monetary balance, to a user.
// Every command that raises a balance posts through Credit.
func (e *Engine) Credit(ctx context.Context, tx pgx.Tx, params domain.CreditParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositivePoints(params.Points); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if params.Amount.IsNegative() {
		return nil, domain.ErrValidation("credit amount must not be negative")
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("credit: %w", err)
	}
	if !params.Correction {
		if err := requireActive(user); err != nil {
			return nil, err
		}
	}

	currency := params.Currency
	if currency == "" {
		currency = currencyOf(user)
	}
	entry, updated, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:        params.UserID,
		Type:          params.Type,
		Points:        params.Points,
		Amount:        params.Amount,
		Currency:      currency,
		BalanceUpdate: domain.BalanceUpdate{Points: params.Points, Balance: params.Amount},
		Provider:      strPtr(params.Provider),
		Metadata:      ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("credit post: %w", err)
	}

	return &domain.CommandResult{
		Transaction: entry,
		User:        updated,
		Events:      []domain.OutboxDraft{domain.NewTransactionPostedEvent(entry)},
	}, nil
}

// Debit removes points, and optionally monetary balance, from a user. Fails with
// INSUFFICIENT_POINTS and no effect when the balance is short. Every command that
// lowers a balance posts through Debit.
//
// The user row lock is re-entrant within a transaction, so commands that locked the
// user for their own checks can call Debit afterwards.
func (e *Engine) Debit(ctx context.Context, tx pgx.Tx, params domain.DebitParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositivePoints(params.Points); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if params.Amount.IsNegative() {
		return nil, domain.ErrValidation("debit amount must not be negative")
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("debit: %w", err)
	}
	if !params.Correction {
		if err := requireActive(user); err != nil {
			return nil, err
		}
	}
	if user.Points < params.Points || user.Balance.LessThan(params.Amount) {
		return nil, domain.ErrInsufficientPoints()
	}

	currency := params.Currency
	if currency == "" {
		currency = currencyOf(user)
	}
	entry, updated, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:        params.UserID,
		Type:          params.Type,
		Points:        -params.Points,
		Amount:        params.Amount,
		Currency:      currency,
		BalanceUpdate: domain.BalanceUpdate{Points: -params.Points, Balance: params.Amount.Neg()},
		Provider:      strPtr(params.Provider),
		Metadata:      ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("debit post: %w", err)
	}

	return &domain.CommandResult{
		Transaction: entry,
		User:        updated,
		Events:      []domain.OutboxDraft{domain.NewTransactionPostedEvent(entry)},
	}, nil
}

// ExecuteAdjust applies an admin's signed point correction: a positive delta is a
// Credit, a negative one a Debit. Corrections apply to suspended accounts.
func (e *Engine) ExecuteAdjust(ctx context.Context, tx pgx.Tx, params domain.AdjustParams) (*domain.CommandResult, error) {
	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("adjust: %w", err)
	}
	if err := policy.CheckAdjustment(user.Points, params.Delta); err != nil {
		return nil, err
	}

	meta := mergeMeta(nil, map[string]interface{}{
		"reason":   params.Reason,
		"admin_id": params.AdminID,
	})
	if params.Delta > 0 {
		return e.Credit(ctx, tx, domain.CreditParams{
			UserID:     params.UserID,
			Points:     params.Delta,
			Type:       domain.TxAdjustment,
			Metadata:   meta,
			Correction: true,
		})
	}
	return e.Debit(ctx, tx, domain.DebitParams{
		UserID:     params.UserID,
		Points:     -params.Delta,
		Type:       domain.TxAdjustment,
		Metadata:   meta,
		Correction: true,
	})
}
