package domain

import (
	"time"

	"github.com/google/uuid"
)

// Game is a playable memory-matching game from the catalog.
type Game struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	RewardPoints int64     `json:"reward_points"`
	Active       bool      `json:"active"`
}

// GameHistory is an immutable record of a game play or prize claim.
type GameHistory struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	GameID        *uuid.UUID `json:"game_id,omitempty"`
	PrizeID       *uuid.UUID `json:"prize_id,omitempty"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	Won           bool       `json:"won"`
	Points        int64      `json:"points"`
	Cost          int64      `json:"cost"`
	CreatedAt     time.Time  `json:"created_at"`
}
