package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/trace"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/http/middleware"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/service"
)

type SlackActionsHandler struct {
	service service.DecisionService
}

func NewSlackActionsHandler(svc service.DecisionService) *SlackActionsHandler {
	return &SlackActionsHandler{service: svc}
}

// Handle receives Slack interactivity callbacks. Slack posts a form with a
// single "payload" field holding the interaction JSON.
func (h *SlackActionsHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	payload := c.PostForm("payload")
	if payload == "" {
		slog.WarnContext(ctx, "slack actions request missing payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing payload"})
		return
	}

	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		slog.WarnContext(ctx, "invalid slack interaction payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var traceID string
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID = spanCtx.TraceID().String()
	}

	if err := h.service.HandleInteraction(ctx, cb, middleware.CorrelationID(c), traceID); err != nil {
		slog.ErrorContext(ctx, "failed to handle slack interaction",
			"error", err,
			"interaction_type", cb.Type)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to handle interaction"})
		return
	}

	c.Status(http.StatusOK)
}
