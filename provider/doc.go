// Package provider implements an abstraction layer for interacting with AI model providers
// (like OpenAI, Anthropic, etc.) in a consistent way. It defines the capability contract
// every vendor adapter implements, and the request/response types shared by all of them.
//
// Design decisions:
//   - Provider abstraction: a single interface (chat, completion, embeddings) that
//     different AI providers implement, erasing the concrete vendor type from callers
//   - Blocking calls: every operation is a single request/response round trip bounded
//     by the provider's configured timeout; there is no streaming surface
//   - Typed failures: Error carries the backend name, a failure kind (auth, provider,
//     transport) and a timestamp, and preserves the cause for errors.Is/As
//   - Validation as decoration: WithValidation wraps any Provider in a bounded
//     retry-with-feedback loop without the wrapped provider knowing about it
//
// Key concepts:
//   - Provider: the full capability contract (ChatProvider, CompletionProvider,
//     EmbeddingProvider plus a backend name)
//   - Message: one turn of a chat conversation with a system, user or assistant role
//   - RequestOption: per-call generation parameter overrides (temperature, max
//     tokens, top-p, top-k, stop sequences)
//   - ValidatorFn: a predicate over response text used by WithValidation
//
// Example usage:
//
//	p := openai.New(openai.WithModel("gpt-4o-mini"))
//	text, err := p.Chat(ctx, []provider.Message{
//	    provider.User("What is the capital of France?"),
//	})
//	if err != nil {
//	    return err
//	}
//
// Vendor adapters live in subpackages (openai, anthropic, ollama, xai); new
// backends are added by implementing the Provider interface.
package provider
