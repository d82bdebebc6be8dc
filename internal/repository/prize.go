package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bingoo/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const prizeColumns = `id, name, description, category, point_value, stock, active, region, created_at, updated_at`

type prizeRepo struct{}

// NewPrizeRepository returns a pgx-backed PrizeRepository.
func NewPrizeRepository() PrizeRepository {
	return &prizeRepo{}
}

func (r *prizeRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Prize, error) {
	return scanPrize(db.QueryRow(ctx, `SELECT `+prizeColumns+` FROM prizes WHERE id = $1`, id))
}

func (r *prizeRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Prize, error) {
	return scanPrize(tx.QueryRow(ctx, `SELECT `+prizeColumns+` FROM prizes WHERE id = $1 FOR UPDATE`, id))
}

// List filters by region (region-less prizes always match), category and availability.
func (r *prizeRepo) List(ctx context.Context, db DBTX, f domain.PrizeFilter) ([]domain.Prize, error) {
	where := []string{"true"}
	var args []interface{}

	if f.Region != "" {
		args = append(args, f.Region)
		where = append(where, fmt.Sprintf("(region IS NULL OR region = $%d)", len(args)))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.AvailableOnly {
		where = append(where, "active AND stock > 0")
	}

	args = append(args, clampLimit(f.Limit, 100, 500))
	query := fmt.Sprintf(`SELECT %s FROM prizes WHERE %s ORDER BY point_value ASC, name ASC LIMIT $%d`,
		prizeColumns, strings.Join(where, " AND "), len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prizes: %w", err)
	}
	defer rows.Close()

	var prizes []domain.Prize
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, err
		}
		prizes = append(prizes, *p)
	}
	return prizes, rows.Err()
}

func (r *prizeRepo) Create(ctx context.Context, db DBTX, in domain.PrizeInput) (*domain.Prize, error) {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return scanPrize(db.QueryRow(ctx, `
		INSERT INTO prizes (name, description, category, point_value, stock, active, region)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+prizeColumns,
		in.Name, in.Description, string(in.Category), in.PointValue, in.Stock, active, in.Region))
}

// Update replaces the editable fields; Active is left alone when nil.
func (r *prizeRepo) Update(ctx context.Context, db DBTX, id uuid.UUID, in domain.PrizeInput) (*domain.Prize, error) {
	return scanPrize(db.QueryRow(ctx, `
		UPDATE prizes
		SET name = $2, description = $3, category = $4, point_value = $5, stock = $6,
		    active = COALESCE($7, active), region = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+prizeColumns,
		id, in.Name, in.Description, string(in.Category), in.PointValue, in.Stock, in.Active, in.Region))
}

func (r *prizeRepo) SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) (*domain.Prize, error) {
	return scanPrize(db.QueryRow(ctx, `
		UPDATE prizes SET active = $2, updated_at = now() WHERE id = $1
		RETURNING `+prizeColumns, id, active))
}

func (r *prizeRepo) Restock(ctx context.Context, db DBTX, id uuid.UUID, quantity int) (*domain.Prize, error) {
	return scanPrize(db.QueryRow(ctx, `
		UPDATE prizes SET stock = stock + $2, updated_at = now() WHERE id = $1
		RETURNING `+prizeColumns, id, quantity))
}

func (r *prizeRepo) ConsumeStock(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Prize, error) {
	return scanPrize(db.QueryRow(ctx, `
		UPDATE prizes
		SET stock = stock - 1, active = (stock - 1 > 0), updated_at = now()
		WHERE id = $1 AND active AND stock > 0
		RETURNING `+prizeColumns, id))
}

func scanPrize(row pgx.Row) (*domain.Prize, error) {
	var p domain.Prize
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.PointValue, &p.Stock,
		&p.Active, &p.Region, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan prize: %w", err)
	}
	return &p, nil
}
