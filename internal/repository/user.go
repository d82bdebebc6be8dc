package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, password_hash, name, role, country, region, points, balance, status, created_at, updated_at`

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

func (r *userRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error) {
	return scanUser(db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error) {
	return scanUser(db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

func (r *userRepo) Create(ctx context.Context, db DBTX, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	row := db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, country, region, points, balance, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.Country, u.Region,
		u.Points, infra.DecimalToNumeric(u.Balance), string(u.Status),
	)
	created, err := scanUser(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.ErrConflict("email already registered")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	*u = *created
	return nil
}

// UpdateBalances uses server-side arithmetic with dynamic SET clauses. The WHERE
// clause keeps both balances non-negative, so a debit is a single conditional update.
func (r *userRepo) UpdateBalances(ctx context.Context, db DBTX, id uuid.UUID, delta domain.BalanceUpdate) (*domain.User, error) {
	setClauses := []string{"updated_at = now()"}
	where := []string{"id = $1"}
	args := []interface{}{id}

	if delta.HasPointsDelta() {
		args = append(args, delta.Points)
		n := len(args)
		setClauses = append(setClauses, fmt.Sprintf("points = points + $%d", n))
		where = append(where, fmt.Sprintf("points + $%d >= 0", n))
	}
	if delta.HasBalanceDelta() {
		args = append(args, infra.DecimalToNumeric(delta.Balance))
		n := len(args)
		setClauses = append(setClauses, fmt.Sprintf("balance = balance + $%d", n))
		where = append(where, fmt.Sprintf("balance + $%d >= 0", n))
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE %s RETURNING %s`,
		strings.Join(setClauses, ", "), strings.Join(where, " AND "), userColumns)

	u, err := scanUser(db.QueryRow(ctx, query, args...))
	if IsCheckViolation(err) {
		return nil, domain.ErrInsufficientPoints()
	}
	return u, err
}

func (r *userRepo) List(ctx context.Context, db DBTX, f domain.UserFilter) ([]domain.User, error) {
	where := []string{"true"}
	var args []interface{}

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if f.Role != "" {
		args = append(args, string(f.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	args = append(args, clampLimit(f.Limit, 50, 200), max(f.Offset, 0))
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		userColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	return scanUser(db.QueryRow(ctx, `
		UPDATE users SET status = $2, updated_at = now() WHERE id = $1
		RETURNING `+userColumns, id, string(status)))
}

func (r *userRepo) UpdateRole(ctx context.Context, db DBTX, id uuid.UUID, role domain.Role) (*domain.User, error) {
	return scanUser(db.QueryRow(ctx, `
		UPDATE users SET role = $2, updated_at = now() WHERE id = $1
		RETURNING `+userColumns, id, string(role)))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var balance pgtype.Numeric
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Country, &u.Region,
		&u.Points, &balance, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Balance, err = infra.NumericToDecimal(balance)
	if err != nil {
		return nil, fmt.Errorf("convert balance: %w", err)
	}
	return &u, nil
}
