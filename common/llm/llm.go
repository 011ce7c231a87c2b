package llm

import (
	"context"
	"fmt"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config selects and authenticates a chat provider.
type Config struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	BaseURL  string // Optional: custom API endpoint
	Model    string
}

// ChatClient is a plain conversational completion client. The pipeline's
// classifier and writer stages run on it.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Model() string
}

type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

type Message struct {
	Role    string
	Content string
}

type ChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// NewChatClient builds a ChatClient for the configured provider. An empty
// provider defaults to Anthropic.
func NewChatClient(cfg Config) (ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderAnthropic
	}

	switch provider {
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
