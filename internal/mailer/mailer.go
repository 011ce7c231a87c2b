// Package mailer sends outbound email through SendGrid.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/yuin/goldmark"
)

// Sender delivers a single email. Drafts are written in markdown and
// rendered to HTML on the way out.
type Sender interface {
	Send(ctx context.Context, to, subject, markdownBody string) error
}

type Config struct {
	APIKey       string
	SenderEmail  string
	SenderName   string
	ReplyToEmail string
}

type sendgridSender struct {
	client   *sendgrid.Client
	cfg      Config
	markdown goldmark.Markdown
}

func New(cfg Config) (Sender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email is required")
	}
	return &sendgridSender{
		client:   sendgrid.NewSendClient(cfg.APIKey),
		cfg:      cfg,
		markdown: goldmark.New(),
	}, nil
}

func (s *sendgridSender) Send(ctx context.Context, to, subject, markdownBody string) error {
	var html bytes.Buffer
	if err := s.markdown.Convert([]byte(markdownBody), &html); err != nil {
		return fmt.Errorf("render email body: %w", err)
	}

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(s.cfg.SenderName, s.cfg.SenderEmail))
	if s.cfg.ReplyToEmail != "" {
		message.SetReplyTo(mail.NewEmail("", s.cfg.ReplyToEmail))
	}
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/html", html.String()))

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status=%d body=%s", resp.StatusCode, resp.Body)
	}

	slog.InfoContext(ctx, "email sent",
		"to_email", to,
		"subject", subject,
		"status_code", resp.StatusCode)
	return nil
}
