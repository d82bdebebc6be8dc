package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func newDraft(agg AggregateType, aggID string, partition string, evt EventType, payload interface{}) OutboxDraft {
	raw, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   aggID,
		EventType:     evt,
		PartitionKey:  partition,
		Headers:       json.RawMessage(`{}`),
		Payload:       raw,
		OccurredAt:    time.Now(),
	}
}

// NewTransactionPostedEvent creates the standard ledger event for a transaction row.
func NewTransactionPostedEvent(tx *Transaction) OutboxDraft {
	return newDraft(AggregateLedger, tx.UserID.String(), tx.UserID.String(), EventTransactionPosted, tx)
}

// NewTransactionSettledEvent is emitted when a PENDING transaction reaches a terminal status.
func NewTransactionSettledEvent(tx *Transaction) OutboxDraft {
	return newDraft(AggregateLedger, tx.UserID.String(), tx.UserID.String(), EventTransactionSettled, tx)
}

// NewUserRegisteredEvent creates a user lifecycle event.
func NewUserRegisteredEvent(u *User) OutboxDraft {
	return newDraft(AggregateUser, u.ID.String(), u.ID.String(), EventUserRegistered, map[string]string{
		"user_id": u.ID.String(),
		"email":   u.Email,
		"region":  u.Region,
	})
}

// NewPrizeClaimedEvent is emitted with the claim's history record.
func NewPrizeClaimedEvent(h *GameHistory, prize *Prize) OutboxDraft {
	return newDraft(AggregatePrize, prize.ID.String(), h.UserID.String(), EventPrizeClaimed, map[string]interface{}{
		"user_id":     h.UserID,
		"prize_id":    prize.ID,
		"history_id":  h.ID,
		"points":      h.Points,
		"stock_after": prize.Stock,
		"active":      prize.Active,
	})
}

// NewTournamentJoinedEvent is emitted when a participant row is created.
func NewTournamentJoinedEvent(p *TournamentParticipant, entryFee int64) OutboxDraft {
	return newDraft(AggregateTournament, p.TournamentID.String(), p.UserID.String(), EventTournamentJoined, map[string]interface{}{
		"tournament_id": p.TournamentID,
		"user_id":       p.UserID,
		"entry_fee":     entryFee,
	})
}

// NewFraudAlertEvent is emitted alongside a fraud_alerts row.
func NewFraudAlertEvent(a *FraudAlert) OutboxDraft {
	return newDraft(AggregateUser, a.UserID.String(), a.UserID.String(), EventFraudAlertRaised, a)
}
