package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harshad-lohande/agentic-sales-copilot/common/llm"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/store"
)

// ProspectLookup resolves an email address to a prospect record.
type ProspectLookup interface {
	Lookup(email string) (model.Prospect, bool, error)
}

// ProspectResearcher produces a research brief about a prospect.
type ProspectResearcher interface {
	Research(ctx context.Context, p model.Prospect) (string, error)
}

// Enricher runs the one-time enrichment pass on a qualifying thread: look up
// the prospect, research them on the web, and rewrite the draft reply with
// that context. A thread is enriched at most once across all deliveries and
// retries; the claim on the thread's enrichment flag enforces that.
type Enricher struct {
	conversations store.ConversationStore
	prospects     ProspectLookup
	researcher    ProspectResearcher
	writer        llm.ChatClient
}

func NewEnricher(conversations store.ConversationStore, prospects ProspectLookup, researcher ProspectResearcher, writer llm.ChatClient) *Enricher {
	return &Enricher{
		conversations: conversations,
		prospects:     prospects,
		researcher:    researcher,
		writer:        writer,
	}
}

// Enrich returns the verdict with a personalized draft when this delivery
// wins the enrichment claim and the research pans out. In every other case
// the verdict comes back unchanged.
func (e *Enricher) Enrich(ctx context.Context, prospectEmail, normalizedSubject string, verdict model.ClassificationVerdict) (model.ClassificationVerdict, error) {
	if !verdict.Classification.Qualifying() {
		return verdict, nil
	}

	claimed, err := e.conversations.ClaimEnrichment(ctx, prospectEmail, normalizedSubject)
	if err != nil {
		return verdict, fmt.Errorf("claiming enrichment: %w", err)
	}
	if !claimed {
		slog.InfoContext(ctx, "enrichment already performed for thread",
			"prospect_email", prospectEmail)
		return verdict, nil
	}

	enriched, err := e.enrichClaimed(ctx, prospectEmail, normalizedSubject, verdict)
	if err != nil {
		// Give the claim back so a retry of this delivery can enrich.
		if releaseErr := e.conversations.ReleaseEnrichment(ctx, prospectEmail, normalizedSubject); releaseErr != nil {
			slog.ErrorContext(ctx, "failed to release enrichment claim",
				"prospect_email", prospectEmail,
				"error", releaseErr)
		}
		return verdict, err
	}
	return enriched, nil
}

func (e *Enricher) enrichClaimed(ctx context.Context, prospectEmail, normalizedSubject string, verdict model.ClassificationVerdict) (model.ClassificationVerdict, error) {
	prospect, found, err := e.prospects.Lookup(prospectEmail)
	if err != nil {
		return verdict, fmt.Errorf("prospect lookup: %w", err)
	}
	if !found {
		// Unknown senders keep the generic draft. The claim stays
		// consumed: the directory is static, so retrying later would
		// just repeat the miss.
		slog.InfoContext(ctx, "prospect not in directory, skipping enrichment",
			"prospect_email", prospectEmail)
		return verdict, nil
	}

	brief, err := e.researcher.Research(ctx, prospect)
	if err != nil {
		return verdict, fmt.Errorf("researching prospect: %w", err)
	}
	if brief == "" {
		slog.InfoContext(ctx, "research produced nothing usable, keeping generic draft",
			"prospect_email", prospectEmail)
		return verdict, nil
	}

	thread, err := e.conversations.Get(ctx, prospectEmail, normalizedSubject)
	if err != nil {
		return verdict, fmt.Errorf("loading thread for rewrite: %w", err)
	}

	personalized, err := e.rewriteDraft(ctx, prospect, thread.History, brief, verdict.DraftReply)
	if err != nil {
		return verdict, err
	}

	verdict.DraftReply = personalized
	slog.InfoContext(ctx, "draft reply personalized",
		"prospect_email", prospectEmail)
	return verdict, nil
}

func (e *Enricher) rewriteDraft(ctx context.Context, p model.Prospect, history []model.Message, brief, draft string) (string, error) {
	serialized, err := serializeHistory(history)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Prospect: %s %s, %s at %s\n\n%s\n\nResearch brief:\n%s\n\nCurrent draft reply:\n%s",
		p.FirstName, p.LastName, p.Position, p.Company, serialized, brief, draft)

	var resp *llm.ChatResponse
	for attempt := 0; attempt < 3; attempt++ {
		resp, err = e.writer.Chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: writerSystemPrompt},
				{Role: llm.RoleUser, Content: prompt},
			},
			Temperature: llm.Temp(0.7),
		})
		if err == nil {
			break
		}
		if !llm.IsRetryable(ctx, err) {
			return "", fmt.Errorf("rewriting draft: %w", err)
		}
		slog.WarnContext(ctx, "draft rewrite retry",
			"prospect_email", p.Email,
			"attempt", attempt+1,
			"error", err)
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}
	if err != nil {
		return "", fmt.Errorf("rewriting draft after 3 attempts: %w", err)
	}

	rewritten := StripJSONFence(resp.Content)
	if rewritten == "" {
		return "", fmt.Errorf("draft rewrite returned empty body")
	}
	return rewritten, nil
}

const writerSystemPrompt = `You rewrite a draft sales reply so it feels personally written for one specific prospect.

You are given the prospect's details, the conversation so far, a research brief of recent findings about them and their company, and the current generic draft.

Rules:
- Keep the intent and commitments of the original draft. Do not invent offers or claims.
- Weave in at most one or two specific, recent facts from the brief, naturally.
- Keep it short and written in plain first-person prose, formatted as markdown.
- Return only the rewritten email body, with no surrounding commentary.`
