package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/mail"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/notify"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/queue"
)

// DecisionService resolves the human decision on a pending review: approve
// the draft, edit it first, or discard it. Sending and history recording run
// as queued tasks so the Slack interaction can be acknowledged immediately.
type DecisionService interface {
	HandleInteraction(ctx context.Context, cb slack.InteractionCallback, correlationID, traceID string) error
}

type decisionService struct {
	queue    queue.Producer
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewDecisionService(producer queue.Producer, notifier notify.Notifier, logger *slog.Logger) DecisionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &decisionService{
		queue:    producer,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *decisionService) HandleInteraction(ctx context.Context, cb slack.InteractionCallback, correlationID, traceID string) error {
	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		return s.handleBlockAction(ctx, cb, correlationID, traceID)
	case slack.InteractionTypeViewSubmission:
		return s.handleViewSubmission(ctx, cb, correlationID, traceID)
	default:
		s.logger.InfoContext(ctx, "ignoring slack interaction",
			"interaction_type", cb.Type)
		return nil
	}
}

func (s *decisionService) handleBlockAction(ctx context.Context, cb slack.InteractionCallback, correlationID, traceID string) error {
	if len(cb.ActionCallback.BlockActions) == 0 {
		return fmt.Errorf("block action payload has no actions")
	}
	action := cb.ActionCallback.BlockActions[0]
	userName := cb.User.Name

	switch action.ActionID {
	case notify.ActionApproveSend:
		decision, err := parseDecision(action.Value)
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "draft approved",
			"user_name", userName,
			"prospect_email", decision.ProspectEmail)

		if err := s.enqueueSendAndRecord(ctx, decision.ProspectEmail, decision.ReplySubject, decision.DraftReply, correlationID, traceID); err != nil {
			return err
		}
		return s.notifier.Replace(ctx, cb.ResponseURL,
			notify.ConfirmationBlocks(cb.Message.Blocks.BlockSet, notify.ApprovedFooter(userName)))

	case notify.ActionEditSend:
		decision, err := parseDecision(action.Value)
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "opening edit modal",
			"user_name", userName,
			"prospect_email", decision.ProspectEmail)

		view, err := notify.EditModalView(decision, cb.ResponseURL)
		if err != nil {
			return err
		}
		return s.notifier.OpenEditModal(ctx, cb.TriggerID, view)

	case notify.ActionDiscard:
		s.logger.InfoContext(ctx, "draft discarded",
			"user_name", userName)
		return s.notifier.Replace(ctx, cb.ResponseURL,
			notify.ConfirmationBlocks(cb.Message.Blocks.BlockSet, notify.DiscardedFooter(userName)))

	default:
		s.logger.InfoContext(ctx, "ignoring unknown action",
			"action_id", action.ActionID)
		return nil
	}
}

func (s *decisionService) handleViewSubmission(ctx context.Context, cb slack.InteractionCallback, correlationID, traceID string) error {
	if cb.View.CallbackID != notify.CallbackEditModal {
		s.logger.InfoContext(ctx, "ignoring unknown view submission",
			"callback_id", cb.View.CallbackID)
		return nil
	}

	var meta notify.EditModalMetadata
	if err := json.Unmarshal([]byte(cb.View.PrivateMetadata), &meta); err != nil {
		return fmt.Errorf("parse modal metadata: %w", err)
	}

	blockState, ok := cb.View.State.Values[notify.EditReplyBlockID]
	if !ok {
		return fmt.Errorf("modal state missing block %q", notify.EditReplyBlockID)
	}
	inputState, ok := blockState[notify.EditReplyActionID]
	if !ok {
		return fmt.Errorf("modal state missing input %q", notify.EditReplyActionID)
	}
	edited := inputState.Value
	if edited == "" {
		return fmt.Errorf("edited reply is empty")
	}

	s.logger.InfoContext(ctx, "edited draft submitted",
		"user_name", cb.User.Name,
		"prospect_email", meta.ProspectEmail)

	if err := s.enqueueSendAndRecord(ctx, meta.ProspectEmail, meta.ReplySubject, edited, correlationID, traceID); err != nil {
		return err
	}
	return s.notifier.Replace(ctx, meta.ResponseURL,
		notify.EditSentBlocks(meta.ProspectEmail, cb.User.Name))
}

// enqueueSendAndRecord dispatches the approved reply and the matching
// history append as separate tasks. Both carry the correlation ID so worker
// logs tie back to the click that released them.
func (s *decisionService) enqueueSendAndRecord(ctx context.Context, prospectEmail, replySubject, body, correlationID, traceID string) error {
	if err := s.queue.Enqueue(ctx, queue.TaskMessage{
		TaskType:      queue.TaskTypeSendEmail,
		CorrelationID: correlationID,
		TraceID:       traceID,
		ProspectEmail: prospectEmail,
		Subject:       replySubject,
		Body:          body,
		Attempt:       1,
	}); err != nil {
		return fmt.Errorf("enqueueing send: %w", err)
	}

	if err := s.queue.Enqueue(ctx, queue.TaskMessage{
		TaskType:          queue.TaskTypeAppendHistory,
		CorrelationID:     correlationID,
		TraceID:           traceID,
		ProspectEmail:     prospectEmail,
		NormalizedSubject: mail.NormalizeSubject(replySubject),
		SenderRole:        model.SenderSalesRep,
		Body:              body,
		Attempt:           1,
	}); err != nil {
		return fmt.Errorf("enqueueing history append: %w", err)
	}
	return nil
}

func parseDecision(value string) (model.PendingDecision, error) {
	var decision model.PendingDecision
	if err := json.Unmarshal([]byte(value), &decision); err != nil {
		return model.PendingDecision{}, fmt.Errorf("parse decision payload: %w", err)
	}
	if decision.ProspectEmail == "" {
		return model.PendingDecision{}, fmt.Errorf("decision payload missing prospect_email")
	}
	return decision, nil
}
