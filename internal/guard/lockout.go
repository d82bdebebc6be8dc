package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/bingoo/platform/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// DB is the subset of pgxpool.Pool used by the lockout guard.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Lockout tracks failed logins per email and realm.
type Lockout struct {
	db     DB
	logger *slog.Logger
}

// NewLockout creates a lockout guard backed by the login_attempts table.
func NewLockout(db DB, logger *slog.Logger) *Lockout {
	return &Lockout{db: db, logger: logger}
}

// RecordAttempt inserts a login attempt row. Failures are logged, never returned.
func (l *Lockout) RecordAttempt(ctx context.Context, email, realm, ip string, success bool) {
	_, err := l.db.Exec(ctx, `
		INSERT INTO login_attempts (email, realm, ip_address, success)
		VALUES ($1, $2, $3, $4)`,
		email, realm, ip, success)
	if err != nil {
		l.logger.Warn("record login attempt failed", "realm", realm, "error", err)
	}
}

// CheckLocked returns ACCOUNT_LOCKED if the account has >= MaxAttempts failed
// logins within the lockout window since its last successful login.
func (l *Lockout) CheckLocked(ctx context.Context, email, realm string) error {
	var count int
	err := l.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE email = $1 AND realm = $2 AND success = false
		  AND created_at > $3
		  AND created_at > COALESCE(
		      (SELECT MAX(created_at) FROM login_attempts
		       WHERE email = $1 AND realm = $2 AND success = true), '-infinity')`,
		email, realm, time.Now().Add(-LockoutWindow)).Scan(&count)
	if err != nil {
		// fail open: a lockout lookup error must not block login
		l.logger.Warn("lockout check failed", "realm", realm, "error", err)
		return nil
	}
	if count >= MaxAttempts {
		return domain.ErrAccountLocked("too many failed login attempts, try again later")
	}
	return nil
}
