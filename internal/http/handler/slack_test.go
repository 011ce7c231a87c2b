package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/slack-go/slack"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/http/handler"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/http/middleware"
)

var _ = Describe("SlackActionsHandler", func() {
	var (
		svc    *mockDecisionService
		router *gin.Engine
	)

	BeforeEach(func() {
		svc = &mockDecisionService{}
		router = gin.New()
		router.Use(middleware.Correlation("X-Correlation-ID"))
		router.POST("/slack/actions", handler.NewSlackActionsHandler(svc).Handle)
	})

	interactionForm := func() url.Values {
		cb := slack.InteractionCallback{Type: slack.InteractionTypeBlockActions}
		raw, err := json.Marshal(cb)
		Expect(err).NotTo(HaveOccurred())
		return url.Values{"payload": {string(raw)}}
	}

	It("passes the interaction and correlation id to the decision service", func() {
		var seenType slack.InteractionType
		var seenCorrelation string
		svc.handleFn = func(ctx context.Context, cb slack.InteractionCallback, correlationID, traceID string) error {
			seenType = cb.Type
			seenCorrelation = correlationID
			return nil
		}

		rec := postForm(router, "/slack/actions", interactionForm(),
			map[string]string{"X-Correlation-ID": "corr-7"})

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(seenType).To(Equal(slack.InteractionTypeBlockActions))
		Expect(seenCorrelation).To(Equal("corr-7"))
	})

	It("rejects a request without a payload", func() {
		rec := postForm(router, "/slack/actions", url.Values{}, nil)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a payload that is not JSON", func() {
		rec := postForm(router, "/slack/actions", url.Values{"payload": {"not-json"}}, nil)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 500 when the decision service fails", func() {
		svc.handleFn = func(ctx context.Context, cb slack.InteractionCallback, correlationID, traceID string) error {
			return errors.New("queue unavailable")
		}
		rec := postForm(router, "/slack/actions", interactionForm(), nil)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})
