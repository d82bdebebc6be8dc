package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FraudCheck records the last fraud evaluation of a user so bursts of ledger
// events for the same user collapse into one evaluation.
type FraudCheck struct {
	UserID      uuid.UUID `json:"user_id"`
	Alerts      int       `json:"alerts"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

func fraudCheckKey(userID uuid.UUID) string {
	return fmt.Sprintf("projection:fraud_check:%s", userID)
}

// RecordFraudCheck stores c for ttl.
func RecordFraudCheck(ctx context.Context, store Store, c FraudCheck, ttl time.Duration) error {
	if c.EvaluatedAt.IsZero() {
		c.EvaluatedAt = time.Now().UTC()
	}
	return SetJSON(ctx, store, fraudCheckKey(c.UserID), c, ttl)
}

// LastFraudCheck returns the stored check, or nil when none is live.
func LastFraudCheck(ctx context.Context, store Store, userID uuid.UUID) (*FraudCheck, error) {
	var c FraudCheck
	if err := GetJSON(ctx, store, fraudCheckKey(userID), &c); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ForgetFraudCheck removes the stored check for userID.
func ForgetFraudCheck(ctx context.Context, store Store, userID uuid.UUID) error {
	return store.Delete(ctx, fraudCheckKey(userID))
}
