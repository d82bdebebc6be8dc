package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/policy"
	"github.com/bingoo/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine owns every point mutation. All commands run inside the caller's transaction
// and follow the same pattern: lock, check, PostLedgerEntry.
//
// Lock order is fixed: prize, tournament or transaction rows first, the user row last.
type Engine struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	history      repository.GameHistoryRepository
	prizes       repository.PrizeRepository
	tournaments  repository.TournamentRepository
	games        repository.GameRepository
	outbox       repository.OutboxRepository
}

// Repositories groups the engine's dependencies.
type Repositories struct {
	Users        repository.UserRepository
	Transactions repository.TransactionRepository
	History      repository.GameHistoryRepository
	Prizes       repository.PrizeRepository
	Tournaments  repository.TournamentRepository
	Games        repository.GameRepository
	Outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(r Repositories) *Engine {
	return &Engine{
		users:        r.Users,
		transactions: r.Transactions,
		history:      r.History,
		prizes:       r.Prizes,
		tournaments:  r.Tournaments,
		games:        r.Games,
		outbox:       r.Outbox,
	}
}

// LockUserForUpdate acquires a row-level lock and returns the user.
// Must be called within a transaction.
func (e *Engine) LockUserForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.User, error) {
	user, err := e.users.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}

// PostLedgerEntry atomically updates user balances and appends a COMPLETED log entry.
//
// Steps, all in the caller's transaction:
//  1. Update balances with server-side arithmetic; the update only matches when
//     neither balance would go negative
//  2. Insert the transaction row
//  3. Insert the posted event into the outbox
//
// The user must already be locked by the caller.
func (e *Engine) PostLedgerEntry(ctx context.Context, tx pgx.Tx, params domain.PostLedgerEntryParams) (*domain.Transaction, *domain.User, error) {
	updated, err := e.users.UpdateBalances(ctx, tx, params.UserID, params.BalanceUpdate)
	if err != nil {
		return nil, nil, fmt.Errorf("update balances: %w", err)
	}
	if updated == nil {
		return nil, nil, domain.ErrInsufficientPoints()
	}

	entry, err := e.transactions.Insert(ctx, tx, params, domain.TxStatusCompleted)
	if err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewTransactionPostedEvent(entry)); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updated, nil
}

func (e *Engine) emit(ctx context.Context, tx pgx.Tx, events ...domain.OutboxDraft) error {
	for _, ev := range events {
		if err := e.outbox.Insert(ctx, tx, ev); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
	}
	return nil
}

func requireActive(u *domain.User) error {
	if u.Status != domain.UserStatusActive {
		return domain.ErrForbidden("account is suspended")
	}
	return nil
}

// currencyOf returns the currency recorded on point-only rows for u.
func currencyOf(u *domain.User) string {
	if r, ok := policy.RegionByID(u.Region); ok {
		return r.Currency
	}
	return policy.ResolveRegion(u.Country).Currency
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ensureJSON(data json.RawMessage) json.RawMessage {
	if data == nil {
		return json.RawMessage(`{}`)
	}
	return data
}

// mergeMeta overlays extras onto base. Invalid base JSON is replaced.
func mergeMeta(base json.RawMessage, extras map[string]interface{}) json.RawMessage {
	m := make(map[string]interface{})
	if base != nil {
		_ = json.Unmarshal(base, &m)
		if m == nil {
			m = make(map[string]interface{})
		}
	}
	for k, v := range extras {
		m[k] = v
	}
	out, err := json.Marshal(m)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return out
}
