package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/queue"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/service"
)

var _ = Describe("InboundIngestService", func() {
	var (
		producer *mockProducer
		svc      service.InboundIngestService
	)

	BeforeEach(func() {
		producer = &mockProducer{}
		svc = service.NewInboundIngestService(producer, nil)
	})

	It("enqueues an inbound email task with the correlation id", func() {
		result, err := svc.Ingest(context.Background(), service.InboundEmailParams{
			Sender:        "Jane Doe <jane.doe@acme.example>",
			Subject:       "Re: Quick question",
			Body:          "Tell me more.",
			CorrelationID: "corr-1",
			TraceID:       "trace-1",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Enqueued).To(BeTrue())

		Expect(producer.enqueued).To(HaveLen(1))
		task := producer.enqueued[0]
		Expect(task.TaskType).To(Equal(queue.TaskTypeInboundEmail))
		Expect(task.Sender).To(Equal("Jane Doe <jane.doe@acme.example>"))
		Expect(task.CorrelationID).To(Equal("corr-1"))
		Expect(task.Attempt).To(Equal(1))
	})

	It("skips deliveries without a body", func() {
		result, err := svc.Ingest(context.Background(), service.InboundEmailParams{
			Sender:  "jane.doe@acme.example",
			Subject: "Re: Quick question",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Enqueued).To(BeFalse())
		Expect(result.Skipped).To(Equal("empty_body"))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("requires a sender", func() {
		_, err := svc.Ingest(context.Background(), service.InboundEmailParams{Body: "hello"})
		Expect(err).To(HaveOccurred())
	})

	It("propagates enqueue failures", func() {
		producer.enqueueFn = func(ctx context.Context, msg queue.TaskMessage) error {
			return errors.New("redis down")
		}
		_, err := svc.Ingest(context.Background(), service.InboundEmailParams{
			Sender: "jane.doe@acme.example",
			Body:   "hello",
		})
		Expect(err).To(HaveOccurred())
	})
})
