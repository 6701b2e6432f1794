package anthropic

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casualjim/llmchain/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc, options ...Option) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New("test-key", append([]Option{WithBaseURL(server.URL)}, options...)...)
}

func messagesResponse(text string) string {
	return `{"content":[{"type":"text","text":"` + text + `"}]}`
}

func TestChatSendsWireRequest(t *testing.T) {
	var body []byte
	var header http.Header
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		header = r.Header.Clone()
		body, _ = io.ReadAll(r.Body)
		io.WriteString(w, messagesResponse("hello there"))
	}, WithModel("claude-3-5-haiku-latest"))

	text, err := p.Chat(context.Background(), []provider.Message{provider.User("hi")},
		provider.WithTemperature(0.3), provider.WithTopK(40), provider.WithStop("END"))
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)

	assert.Equal(t, "test-key", header.Get("X-Api-Key"))
	assert.Equal(t, apiVersion, header.Get("Anthropic-Version"))

	parsed := gjson.ParseBytes(body)
	assert.Equal(t, "claude-3-5-haiku-latest", parsed.Get("model").String())
	assert.EqualValues(t, DefaultMaxTokens, parsed.Get("max_tokens").Int())
	assert.InEpsilon(t, 0.3, parsed.Get("temperature").Float(), 1e-9)
	assert.EqualValues(t, 40, parsed.Get("top_k").Int())
	assert.Equal(t, "END", parsed.Get("stop_sequences.0").String())
}

func TestChatLiftsSystemTurn(t *testing.T) {
	var body []byte
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		io.WriteString(w, messagesResponse("ok"))
	})

	_, err := p.Chat(context.Background(), []provider.Message{
		provider.System("be terse"),
		provider.User("hi"),
	})
	require.NoError(t, err)

	parsed := gjson.ParseBytes(body)
	assert.Equal(t, "be terse", parsed.Get("system").String())
	require.EqualValues(t, 1, parsed.Get("messages.#").Int())
	assert.Equal(t, "user", parsed.Get("messages.0.role").String())
}

func TestChatConcatenatesTextBlocks(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"content":[{"type":"text","text":"part one"},{"type":"tool_use","id":"x"},{"type":"text","text":" part two"}]}`)
	})

	text, err := p.Chat(context.Background(), []provider.Message{provider.User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", text)
}

func TestChatNoContent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"content":[]}`)
	})

	_, err := p.Chat(context.Background(), []provider.Message{provider.User("hi")})
	require.Error(t, err)
	assert.True(t, provider.IsProvider(err))
}

func TestChatAuthFailure(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	})

	_, err := p.Chat(context.Background(), []provider.Message{provider.User("hi")})
	require.Error(t, err)
	assert.True(t, provider.IsAuth(err))
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestChatMissingKeySkipsHTTP(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	p := New("", WithBaseURL(server.URL))
	_, err := p.Chat(context.Background(), []provider.Message{provider.User("hi")})
	require.Error(t, err)
	assert.True(t, provider.IsAuth(err))
	assert.False(t, called)
}

func TestCompleteUsesMessagesSurface(t *testing.T) {
	var body []byte
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		io.WriteString(w, messagesResponse("done"))
	})

	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Prompt:  "finish this",
		Options: provider.BuildRequestOptions(provider.WithMaxTokens(256)),
	})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Text)

	parsed := gjson.ParseBytes(body)
	assert.Equal(t, "finish this", parsed.Get("messages.0.content").String())
	assert.EqualValues(t, 256, parsed.Get("max_tokens").Int())
}

func TestEmbedUnsupported(t *testing.T) {
	p := New("test-key")
	_, err := p.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, provider.IsProvider(err))
}
