package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string

	chatFn     func(messages []Message) (string, error)
	completeFn func(req CompletionRequest) (string, error)
	embedFn    func(input []string) ([][]float64, error)

	chatCalls     [][]Message
	completeCalls []CompletionRequest
	embedCalls    [][]string
}

func (s *stubProvider) Name() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}

func (s *stubProvider) Chat(_ context.Context, messages []Message, _ ...RequestOption) (string, error) {
	s.chatCalls = append(s.chatCalls, messages)
	if s.chatFn != nil {
		return s.chatFn(messages)
	}
	return "ok", nil
}

func (s *stubProvider) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	s.completeCalls = append(s.completeCalls, req)
	if s.completeFn != nil {
		text, err := s.completeFn(req)
		return CompletionResponse{Text: text}, err
	}
	return CompletionResponse{Text: "ok"}, nil
}

func (s *stubProvider) Embed(_ context.Context, input []string) ([][]float64, error) {
	s.embedCalls = append(s.embedCalls, input)
	if s.embedFn != nil {
		return s.embedFn(input)
	}
	return [][]float64{{1, 2, 3}}, nil
}

func rejectAll(reason string) ValidatorFn {
	return func(string) error { return errors.New(reason) }
}

func acceptAll() ValidatorFn {
	return func(string) error { return nil }
}

func TestWithValidationArguments(t *testing.T) {
	inner := &stubProvider{}

	_, err := WithValidation(inner, nil, 3)
	require.Error(t, err)

	_, err = WithValidation(inner, acceptAll(), 0)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)

	p, err := WithValidation(inner, acceptAll(), 1)
	require.NoError(t, err)
	assert.Equal(t, "stub", p.Name())
}

func TestValidatedChatAcceptsFirstAttempt(t *testing.T) {
	inner := &stubProvider{chatFn: func([]Message) (string, error) { return "valid response", nil }}
	p, err := WithValidation(inner, acceptAll(), 5)
	require.NoError(t, err)

	text, err := p.Chat(context.Background(), []Message{User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "valid response", text)
	assert.Len(t, inner.chatCalls, 1)
}

func TestValidatedChatExhaustsAttempts(t *testing.T) {
	inner := &stubProvider{chatFn: func([]Message) (string, error) { return "still wrong", nil }}
	p, err := WithValidation(inner, rejectAll("not a haiku"), 3)
	require.NoError(t, err)

	text, err := p.Chat(context.Background(), []Message{User("write a haiku")})
	require.Error(t, err)
	assert.Empty(t, text)
	assert.Len(t, inner.chatCalls, 3)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 3, verr.Attempts)
	assert.Equal(t, "not a haiku", verr.Reason)
	assert.Equal(t, "stub", verr.Backend)
}

func TestValidatedChatAppendsCorrectiveFeedback(t *testing.T) {
	inner := &stubProvider{chatFn: func([]Message) (string, error) { return "nope", nil }}
	p, err := WithValidation(inner, rejectAll("missing JSON braces"), 2)
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), []Message{User("emit json")})
	require.Error(t, err)
	require.Len(t, inner.chatCalls, 2)

	// First call carries the original conversation untouched.
	assert.Len(t, inner.chatCalls[0], 1)

	// The retry appends exactly one corrective user message with the reason.
	retry := inner.chatCalls[1]
	require.Len(t, retry, 2)
	assert.Equal(t, RoleUser, retry[1].Role)
	assert.Contains(t, retry[1].Content, "missing JSON braces")
	assert.Contains(t, retry[1].Content, "previous output was invalid")
}

func TestValidatedChatDoesNotMutateCallerMessages(t *testing.T) {
	rejected := true
	inner := &stubProvider{chatFn: func([]Message) (string, error) { return "x", nil }}
	validate := func(string) error {
		if rejected {
			rejected = false
			return errors.New("try once more")
		}
		return nil
	}
	p, err := WithValidation(inner, validate, 3)
	require.NoError(t, err)

	original := []Message{User("hello")}
	_, err = p.Chat(context.Background(), original)
	require.NoError(t, err)
	assert.Len(t, original, 1)
}

func TestValidatedChatAcceptsLaterAttempt(t *testing.T) {
	attempt := 0
	inner := &stubProvider{chatFn: func([]Message) (string, error) {
		attempt++
		return fmt.Sprintf("attempt-%d", attempt), nil
	}}
	validate := func(output string) error {
		if output != "attempt-3" {
			return fmt.Errorf("want attempt-3, got %s", output)
		}
		return nil
	}
	p, err := WithValidation(inner, validate, 5)
	require.NoError(t, err)

	text, err := p.Chat(context.Background(), []Message{User("go")})
	require.NoError(t, err)
	assert.Equal(t, "attempt-3", text)
	assert.Len(t, inner.chatCalls, 3)
}

func TestValidatedChatPropagatesProviderFailure(t *testing.T) {
	boom := NewTransportError("stub", "connection refused", errors.New("refused"))
	inner := &stubProvider{chatFn: func([]Message) (string, error) { return "", boom }}
	p, err := WithValidation(inner, rejectAll("never consulted"), 4)
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), []Message{User("hi")})
	require.Error(t, err)
	// Provider failures are not retried and not converted to ValidationError.
	assert.Len(t, inner.chatCalls, 1)
	assert.True(t, IsTransport(err))
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestValidatedCompleteRetriesUnchanged(t *testing.T) {
	inner := &stubProvider{completeFn: func(CompletionRequest) (string, error) { return "junk", nil }}
	p, err := WithValidation(inner, rejectAll("junk output"), 3)
	require.NoError(t, err)

	req := CompletionRequest{Prompt: "complete me", Options: BuildRequestOptions(WithTemperature(0.1))}
	_, err = p.Complete(context.Background(), req)
	require.Error(t, err)
	require.Len(t, inner.completeCalls, 3)
	for _, got := range inner.completeCalls {
		assert.Equal(t, req, got)
	}

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "junk output", verr.Reason)
}

func TestValidatedEmbedPassesThrough(t *testing.T) {
	inner := &stubProvider{}
	p, err := WithValidation(inner, rejectAll("irrelevant for vectors"), 1)
	require.NoError(t, err)

	vectors, err := p.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.NotEmpty(t, vectors)
	assert.Len(t, inner.embedCalls, 1)
}
