package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/harshad-lohande/agentic-sales-copilot/core/db"
)

type Stores struct {
	db *db.DB
}

func NewStores(database *db.DB) *Stores {
	return &Stores{db: database}
}

func (s *Stores) Conversations() ConversationStore {
	return newConversationStore(s.db.Pool())
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
    prospect_email       TEXT        NOT NULL,
    normalized_subject   TEXT        NOT NULL,
    history              JSONB       NOT NULL DEFAULT '[]'::jsonb,
    enrichment_performed BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (prospect_email, normalized_subject)
)`,
	`CREATE INDEX IF NOT EXISTS conversations_updated_at_idx
    ON conversations (updated_at)`,
}

// Migrate creates the schema if it does not exist. Statements run inside one
// transaction so a partially applied schema never survives a crash. Safe to
// run on every startup.
func (s *Stores) Migrate(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range migrations {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("applying migration: %w", err)
			}
		}
		return nil
	})
}
