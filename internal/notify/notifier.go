// Package notify posts review notifications to Slack and handles the
// message updates that resolve them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"
)

// Notifier is the Slack surface the pipeline and decision handler depend on.
type Notifier interface {
	// NotifyReview posts the interactive review message. Failures are
	// returned so the caller can decide whether they are fatal.
	NotifyReview(ctx context.Context, n ReviewNotification) error

	// OpenEditModal opens the edit-and-send modal for a button click.
	OpenEditModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error

	// Replace overwrites the original message via its response URL.
	Replace(ctx context.Context, responseURL string, blocks []slack.Block) error
}

type slackNotifier struct {
	client     *slack.Client
	channelID  string
	httpClient *http.Client
}

func NewSlackNotifier(botToken, channelID string) Notifier {
	return &slackNotifier{
		client:     slack.New(botToken),
		channelID:  channelID,
		httpClient: http.DefaultClient,
	}
}

func (s *slackNotifier) NotifyReview(ctx context.Context, n ReviewNotification) error {
	blocks, err := ReviewBlocks(n)
	if err != nil {
		return err
	}

	_, _, err = s.client.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(fmt.Sprintf("New Email Reply from %s", n.SenderName), false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return fmt.Errorf("post review notification: %w", err)
	}

	slog.InfoContext(ctx, "review notification posted",
		"channel_id", s.channelID,
		"prospect_email", n.ProspectEmail)
	return nil
}

func (s *slackNotifier) OpenEditModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := s.client.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("open edit modal: %w", err)
	}
	return nil
}

func (s *slackNotifier) Replace(ctx context.Context, responseURL string, blocks []slack.Block) error {
	msg := &slack.WebhookMessage{
		Blocks:          &slack.Blocks{BlockSet: blocks},
		ReplaceOriginal: true,
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, responseURL, s.httpClient, msg); err != nil {
		return fmt.Errorf("replace slack message: %w", err)
	}
	return nil
}
