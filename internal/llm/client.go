package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free-form text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateStructured generates a JSON document constrained by a schema
	GenerateStructured(ctx context.Context, req *StructuredRequest) (*StructuredResponse, error)
	// GetModel returns the underlying provider model for a tier (for direct access if needed)
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// StructuredRequest describes a schema-constrained chat completion.
type StructuredRequest struct {
	System     string
	User       string
	SchemaName string
	Schema     json.Marshaler
	// SchemaHint is appended to the user message by providers that cannot
	// enforce Schema natively.
	SchemaHint string
	Tier       ModelTier
}

// StructuredResponse carries both the provider-parsed document and the raw text.
type StructuredResponse struct {
	// Parsed is set only when the provider enforced the schema and returned valid JSON.
	Parsed  json.RawMessage
	Content string
	Refusal string
	Model   string
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// unavailableClient stands in when no provider could be configured, so that
// features without a model keep working and the others report why.
type unavailableClient struct {
	err error
}

// NewUnavailableClient returns a Client whose generation calls all fail with err.
func NewUnavailableClient(err error) Client {
	return &unavailableClient{err: err}
}

func (c *unavailableClient) GenerateContent(context.Context, string, ModelTier) (string, error) {
	return "", c.err
}

func (c *unavailableClient) GenerateStructured(context.Context, *StructuredRequest) (*StructuredResponse, error) {
	return nil, c.err
}

func (c *unavailableClient) GetModel(ModelTier) string {
	return ""
}

func (c *unavailableClient) Close() error {
	return nil
}
