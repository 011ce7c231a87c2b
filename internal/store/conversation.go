package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the store can run
// inside or outside an explicit transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type conversationStore struct {
	db querier
}

func newConversationStore(db querier) *conversationStore {
	return &conversationStore{db: db}
}

const appendMessageSQL = `
INSERT INTO conversations (prospect_email, normalized_subject, history)
VALUES ($1, $2, jsonb_build_array($3::jsonb))
ON CONFLICT (prospect_email, normalized_subject)
DO UPDATE SET
    history    = conversations.history || $3::jsonb,
    updated_at = now()
`

func (s *conversationStore) Append(ctx context.Context, prospectEmail, normalizedSubject string, msg model.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if _, err := s.db.Exec(ctx, appendMessageSQL, prospectEmail, normalizedSubject, raw); err != nil {
		return fmt.Errorf("append conversation message: %w", err)
	}
	return nil
}

const getThreadSQL = `
SELECT history, enrichment_performed, created_at, updated_at
FROM conversations
WHERE prospect_email = $1 AND normalized_subject = $2
`

func (s *conversationStore) Get(ctx context.Context, prospectEmail, normalizedSubject string) (*model.ConversationThread, error) {
	thread := &model.ConversationThread{
		ProspectEmail:     prospectEmail,
		NormalizedSubject: normalizedSubject,
	}

	var rawHistory []byte
	err := s.db.QueryRow(ctx, getThreadSQL, prospectEmail, normalizedSubject).Scan(
		&rawHistory,
		&thread.EnrichmentDone,
		&thread.CreatedAt,
		&thread.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conversation thread: %w", err)
	}

	if len(rawHistory) > 0 {
		if err := json.Unmarshal(rawHistory, &thread.History); err != nil {
			return nil, fmt.Errorf("decode conversation history: %w", err)
		}
	}
	if thread.History == nil {
		thread.History = []model.Message{}
	}
	return thread, nil
}

const claimEnrichmentSQL = `
UPDATE conversations
SET enrichment_performed = TRUE, updated_at = now()
WHERE prospect_email = $1 AND normalized_subject = $2 AND NOT enrichment_performed
`

func (s *conversationStore) ClaimEnrichment(ctx context.Context, prospectEmail, normalizedSubject string) (bool, error) {
	tag, err := s.db.Exec(ctx, claimEnrichmentSQL, prospectEmail, normalizedSubject)
	if err != nil {
		return false, fmt.Errorf("claim enrichment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const releaseEnrichmentSQL = `
UPDATE conversations
SET enrichment_performed = FALSE, updated_at = now()
WHERE prospect_email = $1 AND normalized_subject = $2 AND enrichment_performed
`

func (s *conversationStore) ReleaseEnrichment(ctx context.Context, prospectEmail, normalizedSubject string) error {
	if _, err := s.db.Exec(ctx, releaseEnrichmentSQL, prospectEmail, normalizedSubject); err != nil {
		return fmt.Errorf("release enrichment: %w", err)
	}
	return nil
}

const markEnrichedSQL = `
UPDATE conversations
SET enrichment_performed = TRUE, updated_at = now()
WHERE prospect_email = $1 AND normalized_subject = $2
`

func (s *conversationStore) MarkEnriched(ctx context.Context, prospectEmail, normalizedSubject string) error {
	tag, err := s.db.Exec(ctx, markEnrichedSQL, prospectEmail, normalizedSubject)
	if err != nil {
		return fmt.Errorf("mark enriched: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
