package ai

import "context"

// Message is a single conversation message in provider-neutral form.
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// ChatRequest represents a request to an inference provider.
type ChatRequest struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Provider is the inference boundary: a black-box text completion service.
// Complete blocks until the full response text is available.
type Provider interface {
	// ID returns the provider identifier (e.g. "ollama-llama3.2", "openai")
	ID() string

	// Complete sends the request and returns the assistant's full reply
	Complete(ctx context.Context, req *ChatRequest) (string, error)
}

// ProviderError represents an error surfaced by a provider.
type ProviderError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return e.Message
}
