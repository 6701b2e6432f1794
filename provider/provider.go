package provider

import "context"

// ChatProvider is implemented by backends that support multi-turn chat.
type ChatProvider interface {
	// Chat sends the conversation to the backend and returns the text of the
	// assistant reply. Options override the provider's own generation
	// defaults for this call only.
	Chat(ctx context.Context, messages []Message, opts ...RequestOption) (string, error)
}

// CompletionProvider is implemented by backends that support raw text
// completion.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// EmbeddingProvider is implemented by backends that can turn text into
// embedding vectors.
type EmbeddingProvider interface {
	Embed(ctx context.Context, input []string) ([][]float64, error)
}

// Provider is the full capability contract implemented once per vendor.
// Implementations own their HTTP clients and credentials; callers treat them
// as opaque and safe for concurrent use.
type Provider interface {
	ChatProvider
	CompletionProvider
	EmbeddingProvider

	// Name returns the backend identifier, e.g. "openai" or "anthropic".
	// It is used to annotate errors and log records, never for dispatch.
	Name() string
}
