package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where workflow
// context (correlation_id, prospect_email, etc.) is automatically included in all log
// statements.
type LogFields struct {
	CorrelationID *string // Workflow correlation token (minted at ingress or adopted from a queued task)
	ProspectEmail *string // Prospect identifier of the conversation thread being worked on
	Subject       *string // Normalized subject of the thread
	TaskType      *string // Queued task type (e.g., "inbound_email", "send_email")
	MessageID     *string // Redis stream message ID
	Component     string  // Component name (OTel semantic convention style, e.g., "copilot.pipeline.classifier")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// mergeFields merges two LogFields, preferring non-nil/non-empty values from 'new'.
func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.CorrelationID != nil {
		result.CorrelationID = new.CorrelationID
	}
	if new.ProspectEmail != nil {
		result.ProspectEmail = new.ProspectEmail
	}
	if new.Subject != nil {
		result.Subject = new.Subject
	}
	if new.TaskType != nil {
		result.TaskType = new.TaskType
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{CorrelationID: logger.Ptr(cid)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like drafts or error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
