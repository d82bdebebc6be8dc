package repository

import (
	"context"
	"fmt"

	"github.com/bingoo/platform/internal/domain"
)

type outboxRepo struct{}

// NewOutboxRepository returns a pgx-backed OutboxRepository.
func NewOutboxRepository() OutboxRepository {
	return &outboxRepo{}
}

// Insert writes an outbox event. Columns are camelCase and must be quoted.
func (r *outboxRepo) Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error {
	headers := draft.Headers
	if len(headers) == 0 {
		headers = []byte("{}")
	}
	_, err := db.Exec(ctx, `
		INSERT INTO event_outbox
		  ("eventId", "aggregateType", "aggregateId", "eventType", "partitionKey", "headers", "payload", "occurredAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		draft.EventID,
		string(draft.AggregateType),
		draft.AggregateID,
		string(draft.EventType),
		draft.PartitionKey,
		headers,
		draft.Payload,
		draft.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error) {
	rows, err := db.Query(ctx, `
		SELECT "id", "eventId", "aggregateType", "aggregateId", "eventType",
		       "partitionKey", "headers", "payload", "occurredAt"
		FROM event_outbox
		WHERE "publishedAt" IS NULL
		ORDER BY "id" ASC
		LIMIT $1`, clampLimit(limit, 100, 1000))
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxDraft
	for rows.Next() {
		var d domain.OutboxDraft
		err := rows.Scan(&d.SeqID, &d.EventID, &d.AggregateType, &d.AggregateID,
			&d.EventType, &d.PartitionKey, &d.Headers, &d.Payload, &d.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, d)
	}
	return events, rows.Err()
}

func (r *outboxRepo) MarkPublished(ctx context.Context, db DBTX, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `UPDATE event_outbox SET "publishedAt" = now() WHERE "id" = ANY($1) AND "publishedAt" IS NULL`, ids)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// OutboxStore binds an OutboxRepository to a connection so the relay can poll it.
type OutboxStore struct {
	db   DBTX
	repo OutboxRepository
}

// NewOutboxStore returns a store reading through db.
func NewOutboxStore(db DBTX, repo OutboxRepository) *OutboxStore {
	return &OutboxStore{db: db, repo: repo}
}

func (s *OutboxStore) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxDraft, error) {
	return s.repo.FetchUnpublished(ctx, s.db, limit)
}

func (s *OutboxStore) MarkPublished(ctx context.Context, seqIDs []int64) error {
	return s.repo.MarkPublished(ctx, s.db, seqIDs)
}
