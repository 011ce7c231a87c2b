package store

import (
	"context"
	"errors"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ConversationStore defines the contract for conversation thread data access.
// A thread is keyed by (prospect email, normalized subject).
type ConversationStore interface {
	// Append adds a message to the thread's history, creating the thread on
	// first contact. The append is atomic at the row level, so concurrent
	// appends to the same thread never lose messages.
	Append(ctx context.Context, prospectEmail, normalizedSubject string, msg model.Message) error

	// Get returns the thread, or ErrNotFound if it does not exist.
	Get(ctx context.Context, prospectEmail, normalizedSubject string) (*model.ConversationThread, error)

	// ClaimEnrichment atomically flips the enrichment flag from false to
	// true. It returns true only for the single caller that wins the flip;
	// every other caller (including retries after a crash mid-enrichment)
	// gets false.
	ClaimEnrichment(ctx context.Context, prospectEmail, normalizedSubject string) (bool, error)

	// ReleaseEnrichment clears the enrichment flag so a later delivery can
	// claim it again. Used to compensate when enrichment fails after a
	// successful claim.
	ReleaseEnrichment(ctx context.Context, prospectEmail, normalizedSubject string) error

	// MarkEnriched sets the enrichment flag unconditionally. Returns
	// ErrNotFound if the thread does not exist.
	MarkEnriched(ctx context.Context, prospectEmail, normalizedSubject string) error
}
