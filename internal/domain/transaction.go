package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType enumerates transaction log entry types.
type TransactionType string

const (
	TxDeposit         TransactionType = "DEPOSIT"
	TxWithdrawal      TransactionType = "WITHDRAWAL"
	TxGameCost        TransactionType = "GAME_COST"
	TxClaim           TransactionType = "CLAIM"
	TxTournamentEntry TransactionType = "TOURNAMENT_ENTRY"
	TxAdjustment      TransactionType = "ADJUSTMENT"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxGameCost, TxClaim, TxTournamentEntry, TxAdjustment:
		return true
	}
	return false
}

// TransactionStatus tracks the PENDING -> COMPLETED|FAILED lifecycle.
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "PENDING"
	TxStatusCompleted TransactionStatus = "COMPLETED"
	TxStatusFailed    TransactionStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TxStatusPending, TxStatusCompleted, TxStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether a status change from s to next is allowed.
// Only PENDING moves, and only once, to a terminal state.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	return s == TxStatusPending && (next == TxStatusCompleted || next == TxStatusFailed)
}

// Transaction represents a transactions row (append-only log entry).
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Points      int64             `json:"points"`
	Status      TransactionStatus `json:"status"`
	Provider    *string           `json:"provider,omitempty"`
	ProviderRef *string           `json:"provider_ref,omitempty"`
	Metadata    json.RawMessage   `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// TransactionFilter narrows admin transaction searches.
type TransactionFilter struct {
	UserID *uuid.UUID
	Type   TransactionType
	Status TransactionStatus
	Cursor *uuid.UUID
	Limit  int
}
