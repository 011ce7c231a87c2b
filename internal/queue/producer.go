package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// TaskMessage is the producer-side shape of a queued task. CorrelationID and
// TraceID ride along so worker logs and spans link back to the originating
// request.
type TaskMessage struct {
	TaskType      TaskType
	CorrelationID string
	TraceID       string
	Attempt       int

	// inbound_email
	Sender  string
	Subject string
	Body    string

	// send_email and append_history
	ProspectEmail     string
	NormalizedSubject string
	SenderRole        string
}

type Producer interface {
	Enqueue(ctx context.Context, msg TaskMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg TaskMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type": string(msg.TaskType),
		"attempt":   attempt,
	}
	if msg.CorrelationID != "" {
		fields["correlation_id"] = msg.CorrelationID
	}
	if msg.TraceID != "" {
		fields["trace_id"] = msg.TraceID
	}
	if msg.Sender != "" {
		fields["sender"] = msg.Sender
	}
	if msg.Subject != "" {
		fields["subject"] = msg.Subject
	}
	if msg.Body != "" {
		fields["body"] = msg.Body
	}
	if msg.ProspectEmail != "" {
		fields["prospect_email"] = msg.ProspectEmail
	}
	if msg.NormalizedSubject != "" {
		fields["normalized_subject"] = msg.NormalizedSubject
	}
	if msg.SenderRole != "" {
		fields["sender_role"] = msg.SenderRole
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued task",
		"task_type", msg.TaskType,
		"correlation_id", msg.CorrelationID,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
