package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/harshad-lohande/agentic-sales-copilot/common/llm"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/service"
)

const verdictJSON = `{"classification":"question","summary":"Asks about pricing.","draft_reply":"Hi Jane, happy to help."}`

var _ = Describe("Classifier", func() {
	var agent *mockChatClient

	BeforeEach(func() {
		agent = &mockChatClient{}
	})

	It("classifies a first reply from the raw body", func() {
		var seenPrompt string
		agent.chatFn = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			seenPrompt = req.Messages[len(req.Messages)-1].Content
			return &llm.ChatResponse{Content: verdictJSON}, nil
		}

		history := []model.Message{
			{Sender: model.SenderProspect, Text: "What does it cost?", Timestamp: time.Now()},
		}
		verdict, err := service.NewClassifier(agent).Classify(context.Background(), history, "What does it cost?")
		Expect(err).NotTo(HaveOccurred())
		Expect(verdict.Classification).To(Equal(model.ClassificationQuestion))
		Expect(seenPrompt).To(Equal("What does it cost?"))
	})

	It("gives the model the full history for follow-up replies", func() {
		var seenPrompt string
		agent.chatFn = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			seenPrompt = req.Messages[len(req.Messages)-1].Content
			return &llm.ChatResponse{Content: verdictJSON}, nil
		}

		history := []model.Message{
			{Sender: model.SenderProspect, Text: "What does it cost?"},
			{Sender: model.SenderSalesRep, Text: "Starts at $99/mo."},
			{Sender: model.SenderProspect, Text: "And for 50 seats?"},
		}
		_, err := service.NewClassifier(agent).Classify(context.Background(), history, "And for 50 seats?")
		Expect(err).NotTo(HaveOccurred())
		Expect(seenPrompt).To(ContainSubstring("Conversation history"))
		Expect(seenPrompt).To(ContainSubstring("Starts at $99/mo."))
	})

	It("unwraps fenced model output", func() {
		agent.chatFn = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{Content: "```json\n" + verdictJSON + "\n```"}, nil
		}

		verdict, err := service.NewClassifier(agent).Classify(context.Background(), nil, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(verdict.Summary).To(Equal("Asks about pricing."))
	})

	It("rejects classifications outside the closed set", func() {
		agent.chatFn = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{Content: `{"classification":"maybe","summary":"","draft_reply":""}`}, nil
		}

		_, err := service.NewClassifier(agent).Classify(context.Background(), nil, "hello")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unknown classification"))
	})

	It("rejects output that is not JSON", func() {
		agent.chatFn = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{Content: "I think this is a question."}, nil
		}

		_, err := service.NewClassifier(agent).Classify(context.Background(), nil, "hello")
		Expect(err).To(HaveOccurred())
	})
})

var _ = DescribeTable("StripJSONFence",
	func(input, want string) {
		Expect(service.StripJSONFence(input)).To(Equal(want))
	},
	Entry("bare json", `{"a":1}`, `{"a":1}`),
	Entry("json fence", "```json\n{\"a\":1}\n```", `{"a":1}`),
	Entry("plain fence", "```\n{\"a\":1}\n```", `{"a":1}`),
	Entry("surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`),
	Entry("fence with trailing newline", "```json\n{\"a\":1}\n```\n", `{"a":1}`),
)
