package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/slack-go/slack"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/http/handler"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/http/middleware"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/service"
)

type mockInboundIngestService struct {
	ingestFn func(ctx context.Context, params service.InboundEmailParams) (*service.InboundIngestResult, error)
}

func (m *mockInboundIngestService) Ingest(ctx context.Context, params service.InboundEmailParams) (*service.InboundIngestResult, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, params)
	}
	return &service.InboundIngestResult{Enqueued: true}, nil
}

type mockDecisionService struct {
	handleFn func(ctx context.Context, cb slack.InteractionCallback, correlationID, traceID string) error
}

func (m *mockDecisionService) HandleInteraction(ctx context.Context, cb slack.InteractionCallback, correlationID, traceID string) error {
	if m.handleFn != nil {
		return m.handleFn(ctx, cb, correlationID, traceID)
	}
	return nil
}

func postForm(router *gin.Engine, path string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var _ = Describe("InboundEmailHandler", func() {
	var (
		svc    *mockInboundIngestService
		router *gin.Engine
	)

	BeforeEach(func() {
		svc = &mockInboundIngestService{}
		router = gin.New()
		router.Use(middleware.Correlation("X-Correlation-ID"))
		router.POST("/webhook/inbound-email", handler.NewInboundEmailHandler(svc).Receive)
	})

	It("acknowledges a delivery and forwards the correlation id", func() {
		var seen service.InboundEmailParams
		svc.ingestFn = func(ctx context.Context, params service.InboundEmailParams) (*service.InboundIngestResult, error) {
			seen = params
			return &service.InboundIngestResult{Enqueued: true}, nil
		}

		rec := postForm(router, "/webhook/inbound-email", url.Values{
			"from":    {"Jane Doe <jane.doe@acme.example>"},
			"subject": {"Re: Quick question"},
			"text":    {"Tell me more."},
		}, map[string]string{"X-Correlation-ID": "corr-42"})

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("success"))
		Expect(seen.Sender).To(Equal("Jane Doe <jane.doe@acme.example>"))
		Expect(seen.Body).To(Equal("Tell me more."))
		Expect(seen.CorrelationID).To(Equal("corr-42"))
	})

	It("mints a correlation id when the header is absent and echoes it", func() {
		var seen service.InboundEmailParams
		svc.ingestFn = func(ctx context.Context, params service.InboundEmailParams) (*service.InboundIngestResult, error) {
			seen = params
			return &service.InboundIngestResult{Enqueued: true}, nil
		}

		rec := postForm(router, "/webhook/inbound-email", url.Values{
			"from": {"jane.doe@acme.example"},
			"text": {"hi"},
		}, nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(seen.CorrelationID).NotTo(BeEmpty())
		Expect(rec.Header().Get("X-Correlation-ID")).To(Equal(seen.CorrelationID))
	})

	It("rejects a delivery without a sender", func() {
		rec := postForm(router, "/webhook/inbound-email", url.Values{
			"text": {"hi"},
		}, nil)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 500 when ingestion fails", func() {
		svc.ingestFn = func(ctx context.Context, params service.InboundEmailParams) (*service.InboundIngestResult, error) {
			return nil, errors.New("redis down")
		}
		rec := postForm(router, "/webhook/inbound-email", url.Values{
			"from": {"jane.doe@acme.example"},
			"text": {"hi"},
		}, nil)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})
