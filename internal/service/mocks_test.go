package service_test

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/harshad-lohande/agentic-sales-copilot/common/llm"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/notify"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/queue"
)

type mockConversationStore struct {
	appendFn            func(ctx context.Context, prospectEmail, normalizedSubject string, msg model.Message) error
	getFn               func(ctx context.Context, prospectEmail, normalizedSubject string) (*model.ConversationThread, error)
	claimEnrichmentFn   func(ctx context.Context, prospectEmail, normalizedSubject string) (bool, error)
	releaseEnrichmentFn func(ctx context.Context, prospectEmail, normalizedSubject string) error
	markEnrichedFn      func(ctx context.Context, prospectEmail, normalizedSubject string) error
}

func (m *mockConversationStore) Append(ctx context.Context, prospectEmail, normalizedSubject string, msg model.Message) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, prospectEmail, normalizedSubject, msg)
	}
	return nil
}

func (m *mockConversationStore) Get(ctx context.Context, prospectEmail, normalizedSubject string) (*model.ConversationThread, error) {
	if m.getFn != nil {
		return m.getFn(ctx, prospectEmail, normalizedSubject)
	}
	return &model.ConversationThread{
		ProspectEmail:     prospectEmail,
		NormalizedSubject: normalizedSubject,
		History:           []model.Message{},
	}, nil
}

func (m *mockConversationStore) ClaimEnrichment(ctx context.Context, prospectEmail, normalizedSubject string) (bool, error) {
	if m.claimEnrichmentFn != nil {
		return m.claimEnrichmentFn(ctx, prospectEmail, normalizedSubject)
	}
	return true, nil
}

func (m *mockConversationStore) ReleaseEnrichment(ctx context.Context, prospectEmail, normalizedSubject string) error {
	if m.releaseEnrichmentFn != nil {
		return m.releaseEnrichmentFn(ctx, prospectEmail, normalizedSubject)
	}
	return nil
}

func (m *mockConversationStore) MarkEnriched(ctx context.Context, prospectEmail, normalizedSubject string) error {
	if m.markEnrichedFn != nil {
		return m.markEnrichedFn(ctx, prospectEmail, normalizedSubject)
	}
	return nil
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, msg queue.TaskMessage) error
	enqueued  []queue.TaskMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.TaskMessage) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	m.enqueued = append(m.enqueued, msg)
	return nil
}

func (m *mockProducer) Close() error { return nil }

type mockNotifier struct {
	notifyReviewFn  func(ctx context.Context, n notify.ReviewNotification) error
	openEditModalFn func(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
	replaceFn       func(ctx context.Context, responseURL string, blocks []slack.Block) error
}

func (m *mockNotifier) NotifyReview(ctx context.Context, n notify.ReviewNotification) error {
	if m.notifyReviewFn != nil {
		return m.notifyReviewFn(ctx, n)
	}
	return nil
}

func (m *mockNotifier) OpenEditModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if m.openEditModalFn != nil {
		return m.openEditModalFn(ctx, triggerID, view)
	}
	return nil
}

func (m *mockNotifier) Replace(ctx context.Context, responseURL string, blocks []slack.Block) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, responseURL, blocks)
	}
	return nil
}

type mockChatClient struct {
	chatFn func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

func (m *mockChatClient) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, req)
	}
	return &llm.ChatResponse{}, nil
}

func (m *mockChatClient) Model() string { return "mock-model" }

type mockProspectLookup struct {
	lookupFn func(email string) (model.Prospect, bool, error)
}

func (m *mockProspectLookup) Lookup(email string) (model.Prospect, bool, error) {
	if m.lookupFn != nil {
		return m.lookupFn(email)
	}
	return model.Prospect{}, false, nil
}

type mockResearcher struct {
	researchFn func(ctx context.Context, p model.Prospect) (string, error)
}

func (m *mockResearcher) Research(ctx context.Context, p model.Prospect) (string, error) {
	if m.researchFn != nil {
		return m.researchFn(ctx, p)
	}
	return "", nil
}

type mockClassifier struct {
	classifyFn func(ctx context.Context, history []model.Message, rawBody string) (model.ClassificationVerdict, error)
}

func (m *mockClassifier) Classify(ctx context.Context, history []model.Message, rawBody string) (model.ClassificationVerdict, error) {
	if m.classifyFn != nil {
		return m.classifyFn(ctx, history, rawBody)
	}
	return model.ClassificationVerdict{Classification: model.ClassificationQuestion}, nil
}

type mockEnricher struct {
	enrichFn func(ctx context.Context, prospectEmail, normalizedSubject string, verdict model.ClassificationVerdict) (model.ClassificationVerdict, error)
}

func (m *mockEnricher) Enrich(ctx context.Context, prospectEmail, normalizedSubject string, verdict model.ClassificationVerdict) (model.ClassificationVerdict, error) {
	if m.enrichFn != nil {
		return m.enrichFn(ctx, prospectEmail, normalizedSubject, verdict)
	}
	return verdict, nil
}
