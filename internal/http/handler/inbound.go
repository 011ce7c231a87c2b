package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/http/dto"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/http/middleware"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/service"
)

type InboundEmailHandler struct {
	service service.InboundIngestService
}

func NewInboundEmailHandler(svc service.InboundIngestService) *InboundEmailHandler {
	return &InboundEmailHandler{service: svc}
}

// Receive accepts the provider's inbound email webhook. The provider only
// needs a 200 to stop retrying; processing happens on the worker.
func (h *InboundEmailHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.InboundEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.WarnContext(ctx, "invalid inbound email webhook", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var traceID string
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID = spanCtx.TraceID().String()
	}

	result, err := h.service.Ingest(ctx, service.InboundEmailParams{
		Sender:        req.From,
		Subject:       req.Subject,
		Body:          req.Text,
		CorrelationID: middleware.CorrelationID(c),
		TraceID:       traceID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to ingest inbound email", "error", err)
		c.JSON(http.StatusInternalServerError, dto.InboundEmailResponse{
			Status:  "error",
			Message: "failed to process email reply",
		})
		return
	}

	message := "Email reply received and processed."
	if !result.Enqueued {
		message = "Email reply received."
	}
	c.JSON(http.StatusOK, dto.InboundEmailResponse{
		Status:  "success",
		Message: message,
	})
}
