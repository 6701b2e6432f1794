package provider

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// ValidatorFn judges a provider response. A nil return accepts the text; a
// non-nil error rejects it, and the error message is fed back to the model on
// retry.
type ValidatorFn func(output string) error

// WithValidation wraps a provider so that every chat or completion response
// must pass validate before it is returned. On rejection the call is retried,
// up to maxAttempts total provider invocations; chat retries carry a
// corrective user message describing the rejection, completion retries
// re-send the request unchanged. Embedding calls pass through untouched.
//
// Provider-level failures from the wrapped provider are never retried here,
// they surface to the caller as-is.
func WithValidation(inner Provider, validate ValidatorFn, maxAttempts int) (Provider, error) {
	if validate == nil {
		return nil, NewConfigError("validator function must not be nil")
	}
	if maxAttempts < 1 {
		return nil, NewConfigError("validator attempts must be at least 1, got %d", maxAttempts)
	}
	return &validated{inner: inner, validate: validate, attempts: maxAttempts}, nil
}

type validated struct {
	inner    Provider
	validate ValidatorFn
	attempts int
}

func (v *validated) Name() string { return v.inner.Name() }

func (v *validated) Chat(ctx context.Context, messages []Message, opts ...RequestOption) (string, error) {
	conversation := slices.Clone(messages)
	remaining := v.attempts

	for {
		response, err := v.inner.Chat(ctx, conversation, opts...)
		if err != nil {
			return "", err
		}

		verr := v.validate(response)
		if verr == nil {
			return response, nil
		}

		remaining--
		slog.DebugContext(ctx, "chat response rejected by validator",
			slog.String("backend", v.inner.Name()),
			slog.String("reason", verr.Error()),
			slog.Int("remaining", remaining))
		if remaining == 0 {
			return "", &ValidationError{Backend: v.inner.Name(), Attempts: v.attempts, Reason: verr.Error()}
		}

		conversation = append(conversation, User(fmt.Sprintf(
			"Your previous output was invalid because: %v\nPlease try again and produce a valid response.", verr)))
	}
}

func (v *validated) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	remaining := v.attempts

	for {
		response, err := v.inner.Complete(ctx, req)
		if err != nil {
			return CompletionResponse{}, err
		}

		verr := v.validate(response.Text)
		if verr == nil {
			return response, nil
		}

		// No feedback channel exists for a raw completion, so the request
		// is simply re-sent.
		remaining--
		if remaining == 0 {
			return CompletionResponse{}, &ValidationError{Backend: v.inner.Name(), Attempts: v.attempts, Reason: verr.Error()}
		}
	}
}

func (v *validated) Embed(ctx context.Context, input []string) ([][]float64, error) {
	// Vector outputs have no notion of valid text.
	return v.inner.Embed(ctx, input)
}
