package repository

import (
	"context"
	"testing"

	"github.com/bingoo/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errRow struct{ err error }

func (r errRow) Scan(...interface{}) error { return r.err }

// rowDB answers every QueryRow with a row that fails with err and records the SQL.
type rowDB struct {
	err  error
	sqls []string
}

func (d *rowDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, d.err
}

func (d *rowDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, d.err
}

func (d *rowDB) QueryRow(_ context.Context, sql string, _ ...interface{}) pgx.Row {
	d.sqls = append(d.sqls, sql)
	return errRow{err: d.err}
}

func requireAppCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr := domain.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestUpdateBalances_CheckViolationIsInsufficientPoints(t *testing.T) {
	db := &rowDB{err: &pgconn.PgError{Code: "23514", ConstraintName: "users_points_check"}}

	u, err := NewUserRepository().UpdateBalances(context.Background(), db, uuid.New(), domain.BalanceUpdate{Points: -50})
	assert.Nil(t, u)
	requireAppCode(t, err, domain.CodeInsufficientPoints)
}

func TestUpdateBalances_NoRowIsNil(t *testing.T) {
	db := &rowDB{err: pgx.ErrNoRows}

	u, err := NewUserRepository().UpdateBalances(context.Background(), db, uuid.New(), domain.BalanceUpdate{Points: -50})
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAddParticipant_ConstraintMapping(t *testing.T) {
	repo := NewTournamentRepository()

	_, err := repo.AddParticipant(context.Background(), &rowDB{err: &pgconn.PgError{Code: "23503"}}, uuid.New(), uuid.New())
	requireAppCode(t, err, domain.CodeNotFound)

	_, err = repo.AddParticipant(context.Background(), &rowDB{err: &pgconn.PgError{Code: "23505"}}, uuid.New(), uuid.New())
	requireAppCode(t, err, domain.CodeAlreadyJoined)

	_, err = repo.AddParticipant(context.Background(), &rowDB{err: &pgconn.PgError{Code: "57014"}}, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Nil(t, domain.AsAppError(err))
}

func TestUpdateScore_GuardsTournamentStatus(t *testing.T) {
	db := &rowDB{err: pgx.ErrNoRows}

	p, err := NewTournamentRepository().UpdateScore(context.Background(), db, uuid.New(), uuid.New(), 10)
	require.NoError(t, err)
	assert.Nil(t, p)
	require.Len(t, db.sqls, 1)
	assert.Contains(t, db.sqls[0], "status = 'IN_PROGRESS'")
}
