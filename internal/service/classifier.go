package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harshad-lohande/agentic-sales-copilot/common/llm"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
)

// Classifier reads an inbound reply and produces a verdict: how to classify
// it, a short summary, and a suggested draft response.
type Classifier struct {
	chat llm.ChatClient
}

func NewClassifier(chat llm.ChatClient) *Classifier {
	return &Classifier{chat: chat}
}

// Classify analyzes the inbound reply. When the thread holds more than the
// just-appended message, the full history is given to the model so follow-up
// replies are read in context.
func (c *Classifier) Classify(ctx context.Context, history []model.Message, rawBody string) (model.ClassificationVerdict, error) {
	prompt := rawBody
	if len(history) > 1 {
		serialized, err := serializeHistory(history)
		if err != nil {
			return model.ClassificationVerdict{}, err
		}
		prompt = serialized
	}

	var resp *llm.ChatResponse
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err = c.chat.Chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: classifierSystemPrompt},
				{Role: llm.RoleUser, Content: prompt},
			},
			Temperature: llm.Temp(0.2),
		})
		if err == nil {
			break
		}
		if !llm.IsRetryable(ctx, err) {
			return model.ClassificationVerdict{}, fmt.Errorf("classify reply: %w", err)
		}
		slog.WarnContext(ctx, "classification retry",
			"attempt", attempt+1,
			"error", err)
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}
	if err != nil {
		return model.ClassificationVerdict{}, fmt.Errorf("classify reply after 3 attempts: %w", err)
	}

	verdict, err := ParseVerdict(resp.Content)
	if err != nil {
		return model.ClassificationVerdict{}, err
	}

	slog.InfoContext(ctx, "reply classified",
		"classification", verdict.Classification)
	return verdict, nil
}

// ParseVerdict decodes the model output into a verdict. Fenced output is
// unwrapped first since models often wrap JSON in a markdown code block.
func ParseVerdict(raw string) (model.ClassificationVerdict, error) {
	cleaned := StripJSONFence(raw)

	var verdict model.ClassificationVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return model.ClassificationVerdict{}, fmt.Errorf("parse classification output: %w", err)
	}
	if !verdict.Classification.Valid() {
		return model.ClassificationVerdict{}, fmt.Errorf("unknown classification %q", verdict.Classification)
	}
	return verdict, nil
}

// StripJSONFence removes a surrounding markdown code fence, if present.
func StripJSONFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func serializeHistory(history []model.Message) (string, error) {
	raw, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize history: %w", err)
	}
	return "Conversation history, oldest first:\n\n" + string(raw), nil
}

const classifierSystemPrompt = `You are a sales development assistant processing replies to outbound sales email.

Read the prospect's reply (or the conversation history when provided, where the last prospect message is the one to act on) and respond with a single JSON object:

{
  "classification": one of "positive_interest", "question", "objection", "not_interested", "unsubscribe",
  "summary": a one or two sentence summary of what the prospect said,
  "draft_reply": a complete, polite reply email body in markdown, written in first person as the sales rep
}

Classification rules:
- positive_interest: the prospect wants to engage, book time, or learn more.
- question: the prospect asks something that needs an answer.
- objection: the prospect pushes back on price, timing, or fit but has not said no.
- not_interested: a clear, polite no.
- unsubscribe: the prospect asks to stop receiving email.

Respond with the JSON object only.`
