package domain

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus tracks the tournament lifecycle.
type TournamentStatus string

const (
	TournamentRegistering TournamentStatus = "REGISTERING"
	TournamentInProgress  TournamentStatus = "IN_PROGRESS"
	TournamentFinished    TournamentStatus = "FINISHED"
	TournamentCancelled   TournamentStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentRegistering, TournamentInProgress, TournamentFinished, TournamentCancelled:
		return true
	}
	return false
}

// Tournament represents a tournaments row.
type Tournament struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Status       TournamentStatus `json:"status"`
	EntryFee     int64            `json:"entry_fee"`
	MaxPlayers   int              `json:"max_players"`
	Participants int              `json:"participants"`
	StartsAt     *time.Time       `json:"starts_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// TournamentParticipant represents a tournament_participants row; (TournamentID, UserID) is unique.
type TournamentParticipant struct {
	ID           uuid.UUID `json:"id"`
	TournamentID uuid.UUID `json:"tournament_id"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	Score        int64     `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}

// CanTransition reports whether an admin may move a tournament from s to next.
func (s TournamentStatus) CanTransition(next TournamentStatus) bool {
	switch s {
	case TournamentRegistering:
		return next == TournamentInProgress || next == TournamentCancelled
	case TournamentInProgress:
		return next == TournamentFinished || next == TournamentCancelled
	}
	return false
}

// TournamentInput is the admin create payload.
type TournamentInput struct {
	Name       string     `json:"name"`
	EntryFee   int64      `json:"entry_fee"`
	MaxPlayers int        `json:"max_players"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
}
