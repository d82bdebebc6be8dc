package domain

import (
	"time"

	"github.com/google/uuid"
)

// Fraud alert types.
const (
	AlertTooManyTransactions = "too_many_transactions"
	AlertSuspiciousWinnings  = "suspicious_winnings"
)

// FraudAlert represents a fraud_alerts row. Append-only, reviewed out-of-band.
type FraudAlert struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Reviewed    bool      `json:"reviewed"`
	CreatedAt   time.Time `json:"created_at"`
}
