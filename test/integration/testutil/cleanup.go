//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every mutable table. The seeded games catalogue is kept.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"fraud_alerts",
		"tournament_participants",
		"tournaments",
		"game_history",
		"transactions",
		"prizes",
		"event_outbox",
		"login_attempts",
		"users",
	}

	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}
}
