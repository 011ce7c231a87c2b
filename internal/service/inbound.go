package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harshad-lohande/agentic-sales-copilot/common/logger"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/queue"
)

// InboundEmailParams is the raw webhook payload for one inbound delivery.
type InboundEmailParams struct {
	Sender        string
	Subject       string
	Body          string
	CorrelationID string
	TraceID       string
}

type InboundIngestResult struct {
	Enqueued bool
	Skipped  string
}

// InboundIngestService accepts inbound email deliveries and hands them to
// the worker pipeline. The webhook caller only needs an acknowledgement, so
// all processing happens behind the queue.
type InboundIngestService interface {
	Ingest(ctx context.Context, params InboundEmailParams) (*InboundIngestResult, error)
}

type inboundIngestService struct {
	queue  queue.Producer
	logger *slog.Logger
}

func NewInboundIngestService(producer queue.Producer, logger *slog.Logger) InboundIngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &inboundIngestService{
		queue:  producer,
		logger: logger,
	}
}

func (s *inboundIngestService) Ingest(ctx context.Context, params InboundEmailParams) (*InboundIngestResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		CorrelationID: logger.Ptr(params.CorrelationID),
		Subject:       logger.Ptr(params.Subject),
	})

	if params.Sender == "" {
		return nil, fmt.Errorf("sender is required")
	}
	if params.Body == "" {
		// Deliveries without a text body carry nothing to classify. The
		// webhook still gets a success so the provider does not retry.
		s.logger.InfoContext(ctx, "inbound email has no body, skipping",
			"sender", params.Sender)
		return &InboundIngestResult{Skipped: "empty_body"}, nil
	}

	if err := s.queue.Enqueue(ctx, queue.TaskMessage{
		TaskType:      queue.TaskTypeInboundEmail,
		CorrelationID: params.CorrelationID,
		TraceID:       params.TraceID,
		Sender:        params.Sender,
		Subject:       params.Subject,
		Body:          params.Body,
		Attempt:       1,
	}); err != nil {
		return nil, fmt.Errorf("enqueueing inbound email: %w", err)
	}

	s.logger.InfoContext(ctx, "inbound email enqueued",
		"sender", params.Sender)
	return &InboundIngestResult{Enqueued: true}, nil
}
