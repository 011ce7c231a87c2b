package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harshad-lohande/agentic-sales-copilot/common/logger"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/mailer"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/queue"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/service"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/store"
)

// InboundHandler runs the reply pipeline for one inbound email task.
type InboundHandler interface {
	ProcessInbound(ctx context.Context, email service.InboundEmail) error
}

type Config struct {
	MaxAttempts int
}

// Worker drains the task stream and dispatches each message by task type.
// Tasks are delivered at least once: a failed task is requeued with a bumped
// attempt counter until MaxAttempts, then parked on the DLQ.
type Worker struct {
	consumer      *queue.RedisConsumer
	inbound       InboundHandler
	sender        mailer.Sender
	conversations store.ConversationStore
	cfg           Config
	now           func() time.Time

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer *queue.RedisConsumer, inbound InboundHandler, sender mailer.Sender, conversations store.ConversationStore, cfg Config) *Worker {
	return &Worker{
		consumer:      consumer,
		inbound:       inbound,
		sender:        sender,
		conversations: conversations,
		cfg:           cfg,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "task failed",
				"error", err,
				"message_id", msg.ID,
				"task_type", msg.TaskType,
				"attempt", msg.Attempt)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in task processing",
				"panic", r,
				"message_id", msg.ID,
				"task_type", msg.TaskType)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage runs one task to completion and acks it. Exported so it can
// be reused by the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		CorrelationID: logger.Ptr(msg.CorrelationID),
		TaskType:      logger.Ptr(string(msg.TaskType)),
		MessageID:     logger.Ptr(msg.ID),
	})

	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker."+string(msg.TaskType))
	defer span.End()
	ctx = span.Context()

	slog.InfoContext(ctx, "task started",
		"attempt", msg.Attempt)

	start := w.now()
	var err error
	switch msg.TaskType {
	case queue.TaskTypeInboundEmail:
		err = w.inbound.ProcessInbound(ctx, service.InboundEmail{
			Sender:  msg.Sender,
			Subject: msg.Subject,
			Body:    msg.Body,
		})
	case queue.TaskTypeSendEmail:
		err = w.sender.Send(ctx, msg.ProspectEmail, msg.Subject, msg.Body)
	case queue.TaskTypeAppendHistory:
		err = w.conversations.Append(ctx, msg.ProspectEmail, msg.NormalizedSubject, model.Message{
			Sender:    msg.SenderRole,
			Text:      msg.Body,
			Timestamp: w.now().UTC(),
		})
	default:
		// ParseMessage rejects unknown types, so this only fires after a
		// deploy skew. Park it rather than retry forever.
		err = fmt.Errorf("no handler for task_type %q", msg.TaskType)
	}

	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "task failed",
			"error", err,
			"duration_ms", w.now().Sub(start).Milliseconds())
		return err
	}

	if ackErr := w.consumer.Ack(ctx, msg); ackErr != nil {
		// Message will be reclaimed and reprocessed, which handlers
		// tolerate.
		slog.WarnContext(ctx, "failed to ACK task",
			"error", ackErr,
			"message_id", msg.ID)
	}

	slog.InfoContext(ctx, "task succeeded",
		"duration_ms", w.now().Sub(start).Milliseconds())
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"task_type", msg.TaskType,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed task",
		"message_id", msg.ID,
		"task_type", msg.TaskType,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue task", "error", requeueErr)
	}
}
