package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert participant: %w", &pgconn.PgError{Code: "23505"})
	check := &pgconn.PgError{Code: "23514"}
	fk := &pgconn.PgError{Code: "23503"}
	plain := errors.New("connection reset")

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(check))
	assert.True(t, IsCheckViolation(check))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(plain))
	assert.False(t, IsCheckViolation(nil))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 100))
	assert.Equal(t, 20, clampLimit(-3, 20, 100))
	assert.Equal(t, 100, clampLimit(101, 20, 100))
	assert.Equal(t, 100, clampLimit(5000, 20, 100))
	assert.Equal(t, 100, clampLimit(100, 20, 100))
	assert.Equal(t, 50, clampLimit(50, 20, 100))
}
