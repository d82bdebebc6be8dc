package repository

import (
	"context"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to users.
type UserRepository interface {
	// FindByID returns a user by ID, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)

	// FindByEmail returns a user by email (case-insensitive), or nil.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the user.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)

	// Create inserts a new user and fills server-generated fields.
	// A duplicate email returns CONFLICT.
	Create(ctx context.Context, db DBTX, user *domain.User) error

	// UpdateBalances applies signed deltas with server-side arithmetic. The update only
	// matches when neither column would go negative; nil means no row matched.
	UpdateBalances(ctx context.Context, db DBTX, id uuid.UUID, delta domain.BalanceUpdate) (*domain.User, error)

	// List returns users matching filter, newest first.
	List(ctx context.Context, db DBTX, filter domain.UserFilter) ([]domain.User, error)

	// UpdateStatus sets the account status.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.UserStatus) (*domain.User, error)

	// UpdateRole sets the role.
	UpdateRole(ctx context.Context, db DBTX, id uuid.UUID, role domain.Role) (*domain.User, error)
}

// TransactionRepository provides access to the append-only transactions log.
type TransactionRepository interface {
	// Insert creates a log entry. Non-PENDING rows are stamped completed.
	Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, status domain.TransactionStatus) (*domain.Transaction, error)

	// FindByID returns a transaction by ID, or nil.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error)

	// LockForUpdate locks a transaction row.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)

	// Settle moves a PENDING row to a terminal status. Returns nil when the row
	// was not PENDING, so a second settlement never applies.
	Settle(ctx context.Context, db DBTX, id uuid.UUID, status domain.TransactionStatus, providerRef *string) (*domain.Transaction, error)

	// SetProviderRef records the provider's reference on a PENDING row.
	SetProviderRef(ctx context.Context, db DBTX, id uuid.UUID, provider, ref string) error

	// ListByUser returns a user's transactions, newest first, with cursor pagination.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]domain.Transaction, error)

	// Search returns transactions matching an admin filter, newest first.
	Search(ctx context.Context, db DBTX, filter domain.TransactionFilter) ([]domain.Transaction, error)

	// FindRefundOf returns the refund recorded against a deposit, or nil.
	FindRefundOf(ctx context.Context, db DBTX, depositID uuid.UUID) (*domain.Transaction, error)

	// CountSince counts a user's transactions created after since.
	CountSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (int, error)

	// SumDepositsSince totals a user's PENDING and COMPLETED deposit amounts created after since.
	SumDepositsSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (decimal.Decimal, error)
}

// GameRepository provides access to the game catalog.
type GameRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error)
	ListActive(ctx context.Context, db DBTX) ([]domain.Game, error)
}

// GameHistoryRepository provides access to game_history.
type GameHistoryRepository interface {
	// Insert writes an immutable history row.
	Insert(ctx context.Context, db DBTX, h *domain.GameHistory) error

	// ListByUser returns a user's history, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.GameHistory, error)

	// SumWinningsSince totals points won from game plays (claims excluded) after since.
	SumWinningsSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (int64, error)
}

// PrizeRepository provides access to the prize catalog.
type PrizeRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Prize, error)
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Prize, error)
	List(ctx context.Context, db DBTX, filter domain.PrizeFilter) ([]domain.Prize, error)
	Create(ctx context.Context, db DBTX, in domain.PrizeInput) (*domain.Prize, error)
	Update(ctx context.Context, db DBTX, id uuid.UUID, in domain.PrizeInput) (*domain.Prize, error)
	SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) (*domain.Prize, error)
	Restock(ctx context.Context, db DBTX, id uuid.UUID, quantity int) (*domain.Prize, error)

	// ConsumeStock takes one unit and deactivates the prize when stock reaches zero.
	// Returns nil if the prize was not claimable.
	ConsumeStock(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Prize, error)
}

// TournamentRepository provides access to tournaments and their participants.
type TournamentRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Tournament, error)

	// LockForUpdate locks the tournament row; Participants is counted under the lock.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Tournament, error)

	List(ctx context.Context, db DBTX, status domain.TournamentStatus) ([]domain.Tournament, error)
	Create(ctx context.Context, db DBTX, in domain.TournamentInput) (*domain.Tournament, error)

	// UpdateStatus changes status only if the row is still in from. Returns nil otherwise.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, from, to domain.TournamentStatus) (*domain.Tournament, error)

	// AddParticipant inserts a participant; a duplicate returns ALREADY_JOINED.
	AddParticipant(ctx context.Context, db DBTX, tournamentID, userID uuid.UUID) (*domain.TournamentParticipant, error)

	// Leaderboard lists participants by score (desc), then join order.
	Leaderboard(ctx context.Context, db DBTX, tournamentID uuid.UUID, limit int) ([]domain.TournamentParticipant, error)

	// UpdateScore sets a participant's score; nil if the participant does not exist.
	UpdateScore(ctx context.Context, db DBTX, tournamentID, userID uuid.UUID, score int64) (*domain.TournamentParticipant, error)
}

// FraudAlertRepository provides access to fraud_alerts.
type FraudAlertRepository interface {
	Insert(ctx context.Context, db DBTX, alert *domain.FraudAlert) error
	List(ctx context.Context, db DBTX, reviewed *bool, limit int) ([]domain.FraudAlert, error)
	MarkReviewed(ctx context.Context, db DBTX, id uuid.UUID) (*domain.FraudAlert, error)
	// LockUser serializes alert writes for userID until tx ends.
	LockUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
	// HasOpenSince reports whether an unreviewed alert of alertType was raised for userID since the given time.
	HasOpenSince(ctx context.Context, db DBTX, userID uuid.UUID, alertType string, since time.Time) (bool, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the ledger entry).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events in sequence order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// StatsRepository runs read-only reporting aggregates.
type StatsRepository interface {
	// DailyAggregates returns one row per UTC day in [from, to] that had activity.
	DailyAggregates(ctx context.Context, db DBTX, from, to time.Time) ([]domain.DailyStat, error)

	// Dashboard returns headline totals.
	Dashboard(ctx context.Context, db DBTX, activeSince time.Time) (*domain.DashboardStats, error)
}
