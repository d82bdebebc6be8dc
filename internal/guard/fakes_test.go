package guard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type brokenDB struct{}

func (brokenDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("connection refused")
}

func (brokenDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return errRow{err: errors.New("connection refused")}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
