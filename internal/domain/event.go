package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventUserRegistered     EventType = "bingoo.user.registered"
	EventTransactionPosted  EventType = "bingoo.ledger.transaction.posted"
	EventTransactionSettled EventType = "bingoo.ledger.transaction.settled"
	EventPrizeClaimed       EventType = "bingoo.prize.claimed"
	EventTournamentJoined   EventType = "bingoo.tournament.joined"
	EventFraudAlertRaised   EventType = "bingoo.fraud.alert.raised"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateUser       AggregateType = "user"
	AggregateLedger     AggregateType = "ledger"
	AggregatePrize      AggregateType = "prize"
	AggregateTournament AggregateType = "tournament"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Topic returns the Kafka topic the event is relayed to.
func (d OutboxDraft) Topic() string {
	return string(d.EventType)
}
