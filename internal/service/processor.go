package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harshad-lohande/agentic-sales-copilot/common/logger"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/mail"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/notify"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/store"
)

// ReplyClassifier produces a verdict for an inbound reply.
type ReplyClassifier interface {
	Classify(ctx context.Context, history []model.Message, rawBody string) (model.ClassificationVerdict, error)
}

// DraftEnricher optionally personalizes a qualifying verdict's draft.
type DraftEnricher interface {
	Enrich(ctx context.Context, prospectEmail, normalizedSubject string, verdict model.ClassificationVerdict) (model.ClassificationVerdict, error)
}

// InboundProcessor runs the reply pipeline for one inbound email: resolve
// the thread, record the message, classify it, enrich the draft, and ask a
// human to decide.
type InboundProcessor struct {
	conversations store.ConversationStore
	classifier    ReplyClassifier
	enricher      DraftEnricher
	notifier      notify.Notifier
	now           func() time.Time
}

func NewInboundProcessor(conversations store.ConversationStore, classifier ReplyClassifier, enricher DraftEnricher, notifier notify.Notifier) *InboundProcessor {
	return &InboundProcessor{
		conversations: conversations,
		classifier:    classifier,
		enricher:      enricher,
		notifier:      notifier,
		now:           time.Now,
	}
}

type InboundEmail struct {
	Sender  string
	Subject string
	Body    string
}

func (p *InboundProcessor) ProcessInbound(ctx context.Context, email InboundEmail) error {
	identity := mail.Resolve(email.Sender, email.Subject)
	if identity.ProspectEmail == "" {
		return fmt.Errorf("could not extract prospect email from sender %q", email.Sender)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProspectEmail: logger.Ptr(identity.ProspectEmail),
		Subject:       logger.Ptr(identity.NormalizedSubject),
	})

	if err := p.conversations.Append(ctx, identity.ProspectEmail, identity.NormalizedSubject, model.Message{
		Sender:    model.SenderProspect,
		Text:      email.Body,
		Timestamp: p.now().UTC(),
	}); err != nil {
		return fmt.Errorf("recording inbound message: %w", err)
	}

	thread, err := p.conversations.Get(ctx, identity.ProspectEmail, identity.NormalizedSubject)
	if err != nil {
		return fmt.Errorf("loading thread: %w", err)
	}

	verdict, err := p.classifier.Classify(ctx, thread.History, email.Body)
	if err != nil {
		return err
	}

	verdict, err = p.enricher.Enrich(ctx, identity.ProspectEmail, identity.NormalizedSubject, verdict)
	if err != nil {
		return err
	}

	notification := notify.ReviewNotification{
		SenderName:    identity.DisplayName,
		ProspectEmail: identity.ProspectEmail,
		Subject:       email.Subject,
		Verdict:       verdict,
		Decision: model.PendingDecision{
			ProspectEmail: identity.ProspectEmail,
			DraftReply:    verdict.DraftReply,
			ReplySubject:  mail.ReplySubject(email.Subject),
		},
	}
	if err := p.notifier.NotifyReview(ctx, notification); err != nil {
		// The message is recorded and classified; failing the task here
		// would redeliver it and duplicate the thread entry. The miss is
		// visible in logs instead.
		slog.ErrorContext(ctx, "failed to post review notification",
			"error", err)
		return nil
	}

	slog.InfoContext(ctx, "inbound email processed",
		"classification", verdict.Classification)
	return nil
}
