package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, type, amount, currency, points, status,
	provider, provider_ref, metadata, created_at, completed_at`

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

func (r *transactionRepo) Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, status domain.TransactionStatus) (*domain.Transaction, error) {
	meta := params.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	row := db.QueryRow(ctx, `
		INSERT INTO transactions
		  (user_id, type, amount, currency, points, status, provider, provider_ref, metadata, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
		        CASE WHEN $6::text = 'PENDING' THEN NULL ELSE clock_timestamp() END)
		RETURNING `+transactionColumns,
		params.UserID,
		string(params.Type),
		infra.DecimalToNumeric(params.Amount),
		params.Currency,
		params.Points,
		string(status),
		params.Provider,
		params.ProviderRef,
		meta,
	)
	return scanTransaction(row)
}

func (r *transactionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error) {
	return scanTransaction(db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
}

func (r *transactionRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	return scanTransaction(tx.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
}

func (r *transactionRepo) Settle(ctx context.Context, db DBTX, id uuid.UUID, status domain.TransactionStatus, providerRef *string) (*domain.Transaction, error) {
	return scanTransaction(db.QueryRow(ctx, `
		UPDATE transactions
		SET status = $2, completed_at = clock_timestamp(), provider_ref = COALESCE($3, provider_ref)
		WHERE id = $1 AND status = 'PENDING'
		RETURNING `+transactionColumns,
		id, string(status), providerRef))
}

func (r *transactionRepo) SetProviderRef(ctx context.Context, db DBTX, id uuid.UUID, provider, ref string) error {
	tag, err := db.Exec(ctx, `
		UPDATE transactions SET provider = $2, provider_ref = $3
		WHERE id = $1 AND status = 'PENDING'`, id, provider, ref)
	if err != nil {
		return fmt.Errorf("set provider ref: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict("transaction is no longer pending")
	}
	return nil
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]domain.Transaction, error) {
	return r.Search(ctx, db, domain.TransactionFilter{UserID: &userID, Cursor: cursor, Limit: limit})
}

// Search pages with a keyset cursor: the cursor row itself is excluded.
func (r *transactionRepo) Search(ctx context.Context, db DBTX, f domain.TransactionFilter) ([]domain.Transaction, error) {
	where := []string{"true"}
	var args []interface{}

	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Cursor != nil {
		args = append(args, *f.Cursor)
		where = append(where, fmt.Sprintf(
			"(created_at, id) < (SELECT created_at, id FROM transactions WHERE id = $%d)", len(args)))
	}

	args = append(args, clampLimit(f.Limit, 20, 100))
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d`,
		transactionColumns, strings.Join(where, " AND "), len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

// FindRefundOf returns the WITHDRAWAL that reversed depositID, or nil.
func (r *transactionRepo) FindRefundOf(ctx context.Context, db DBTX, depositID uuid.UUID) (*domain.Transaction, error) {
	return scanTransaction(db.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE type = 'WITHDRAWAL' AND metadata->>'refund_of' = $1
		LIMIT 1`, depositID.String()))
}

func (r *transactionRepo) CountSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND created_at > $2`,
		userID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *transactionRepo) SumDepositsSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND type = 'DEPOSIT' AND status IN ('PENDING', 'COMPLETED')
		  AND created_at > $2`,
		userID, since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum deposits: %w", err)
	}
	return infra.NumericToDecimal(total)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amount pgtype.Numeric
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &amount, &tx.Currency, &tx.Points, &tx.Status,
		&tx.Provider, &tx.ProviderRef, &tx.Metadata, &tx.CreatedAt, &tx.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Amount, err = infra.NumericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	return &tx, nil
}
