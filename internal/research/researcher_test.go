package research_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/harshad-lohande/agentic-sales-copilot/common/llm"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/research"
)

type mockSearcher struct {
	searchFn func(ctx context.Context, req research.SearchRequest) ([]research.SearchResult, error)
}

func (m *mockSearcher) Search(ctx context.Context, req research.SearchRequest) ([]research.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return nil, nil
}

type mockLLMClient struct {
	chatFn func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
}

func (m *mockLLMClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, req, result)
	}
	return &llm.Response{}, nil
}

func (m *mockLLMClient) Model() string { return "mock-model" }

var _ = Describe("Researcher", func() {
	var (
		searcher *mockSearcher
		client   *mockLLMClient
		prospect model.Prospect
	)

	BeforeEach(func() {
		searcher = &mockSearcher{}
		client = &mockLLMClient{}
		prospect = model.Prospect{
			FirstName: "Jane",
			LastName:  "Doe",
			Company:   "Acme Corp",
			Position:  "VP Engineering",
			Email:     "jane.doe@acme.example",
		}
	})

	It("summarizes consolidated search results", func() {
		var seenQueries []string
		searcher.searchFn = func(ctx context.Context, req research.SearchRequest) ([]research.SearchResult, error) {
			seenQueries = append(seenQueries, req.Query)
			return []research.SearchResult{
				{URL: "https://example.com/news", Content: "Acme raised a Series B."},
			}, nil
		}

		var seenPrompt string
		client.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
			seenPrompt = req.UserPrompt
			raw, _ := json.Marshal(map[string]string{
				"research_summary": "Acme Corp recently raised a Series B.",
			})
			Expect(json.Unmarshal(raw, result)).To(Succeed())
			return &llm.Response{}, nil
		}

		summary, err := research.NewResearcher(searcher, client).Research(context.Background(), prospect)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal("Acme Corp recently raised a Series B."))

		Expect(seenQueries).To(HaveLen(5))
		Expect(seenQueries[0]).To(ContainSubstring("Jane Doe"))
		Expect(seenQueries[1]).To(ContainSubstring("Acme Corp"))
		Expect(seenPrompt).To(ContainSubstring("https://example.com/news"))
		Expect(seenPrompt).To(ContainSubstring("Series B"))
	})

	It("returns empty summary without calling the model when nothing is found", func() {
		searcher.searchFn = func(ctx context.Context, req research.SearchRequest) ([]research.SearchResult, error) {
			return nil, nil
		}
		called := false
		client.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
			called = true
			return &llm.Response{}, nil
		}

		summary, err := research.NewResearcher(searcher, client).Research(context.Background(), prospect)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(BeEmpty())
		Expect(called).To(BeFalse())
	})

	It("tolerates individual query failures", func() {
		calls := 0
		searcher.searchFn = func(ctx context.Context, req research.SearchRequest) ([]research.SearchResult, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("rate limited")
			}
			return []research.SearchResult{{URL: "https://example.com", Content: "milestone"}}, nil
		}
		client.chatFn = func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
			raw, _ := json.Marshal(map[string]string{"research_summary": "brief"})
			Expect(json.Unmarshal(raw, result)).To(Succeed())
			return &llm.Response{}, nil
		}

		summary, err := research.NewResearcher(searcher, client).Research(context.Background(), prospect)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal("brief"))
	})

	It("fails when every query fails", func() {
		searcher.searchFn = func(ctx context.Context, req research.SearchRequest) ([]research.SearchResult, error) {
			return nil, errors.New("network down")
		}

		_, err := research.NewResearcher(searcher, client).Research(context.Background(), prospect)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("research queries failed"))
	})
})
