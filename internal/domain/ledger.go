package domain

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceUpdate describes the signed deltas applied to a user row.
// A negative Points delta is applied conditionally so the balance never goes below zero.
type BalanceUpdate struct {
	Points  int64
	Balance decimal.Decimal
}

// HasPointsDelta returns true if the point balance changes.
func (u BalanceUpdate) HasPointsDelta() bool { return u.Points != 0 }

// HasBalanceDelta returns true if the monetary balance changes.
func (u BalanceUpdate) HasBalanceDelta() bool { return !u.Balance.IsZero() }

// PostLedgerEntryParams is the input to the atomic PostLedgerEntry operation.
type PostLedgerEntryParams struct {
	UserID        uuid.UUID
	Type          TransactionType
	Points        int64 // signed delta recorded on the row
	Amount        decimal.Decimal
	Currency      string
	BalanceUpdate BalanceUpdate
	Provider      *string
	ProviderRef   *string
	Metadata      json.RawMessage
}

// CommandResult is the return value of the single-row ledger commands.
type CommandResult struct {
	Transaction *Transaction
	User        *User
	Events      []OutboxDraft
}

// CreditParams holds the input for Engine.Credit.
type CreditParams struct {
	UserID   uuid.UUID
	Points   int64
	Type     TransactionType
	Amount   decimal.Decimal // monetary balance credited with the points; zero for point-only rows
	Currency string          // defaults to the user's region currency
	Provider string
	Metadata json.RawMessage
	// Correction marks an admin correction, which also applies to suspended accounts.
	Correction bool
}

// DebitParams holds the input for Engine.Debit.
type DebitParams struct {
	UserID   uuid.UUID
	Points   int64
	Type     TransactionType
	Amount   decimal.Decimal // monetary balance removed with the points; recorded positive on the row
	Currency string
	Provider string
	Metadata json.RawMessage
	// Correction marks an admin correction, which also applies to suspended accounts.
	Correction bool
}

// ClaimParams holds the input for ExecuteClaim.
type ClaimParams struct {
	UserID  uuid.UUID
	PrizeID uuid.UUID
}

// ClaimResult is returned by ExecuteClaim.
type ClaimResult struct {
	History     *GameHistory
	Transaction *Transaction
	User        *User
	Prize       *Prize
	Events      []OutboxDraft
}

// JoinParams holds the input for ExecuteJoin.
type JoinParams struct {
	UserID       uuid.UUID
	TournamentID uuid.UUID
}

// JoinResult is returned by ExecuteJoin. Transaction is nil for free tournaments.
type JoinResult struct {
	Participant *TournamentParticipant
	Tournament  *Tournament
	Transaction *Transaction
	User        *User
	Events      []OutboxDraft
}

// PlayParams holds the input for ExecutePlay.
type PlayParams struct {
	UserID uuid.UUID
	GameID uuid.UUID
	Cost   int64 // points per play for the user's region
	Won    bool
}

// PlayResult is returned by ExecutePlay.
type PlayResult struct {
	History     *GameHistory
	Transaction *Transaction
	User        *User
	Events      []OutboxDraft
}

// SettleDepositParams holds the provider's declared outcome for a pending deposit.
type SettleDepositParams struct {
	TransactionID uuid.UUID
	Outcome       TransactionStatus
	ProviderRef   string
}

// AdjustParams holds the input for an admin point adjustment.
type AdjustParams struct {
	UserID  uuid.UUID
	Delta   int64
	Reason  string
	AdminID uuid.UUID
}

// RefundParams holds the input for reversing a completed deposit.
type RefundParams struct {
	DepositID uuid.UUID
	AdminID   uuid.UUID
	Reason    string
}

// OpenDepositParams holds the input for recording a PENDING deposit.
type OpenDepositParams struct {
	UserID   uuid.UUID
	Points   int64 // credited when the deposit completes
	Amount   decimal.Decimal
	Currency string
	Provider string
}
