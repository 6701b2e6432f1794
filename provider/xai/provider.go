// Package xai implements the provider contract against the X.AI API, which
// exposes an OpenAI-compatible chat completions surface.
package xai

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/casualjim/llmchain/provider"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const (
	backendName = "xai"

	// DefaultBaseURL is the public X.AI API endpoint.
	DefaultBaseURL = "https://api.x.ai"
	// DefaultModel is used when no model is configured.
	DefaultModel = "grok-2-latest"
)

// Provider talks to the X.AI API.
type Provider struct {
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	system         string
	defaults       provider.RequestOptions
	client         *http.Client
}

// Option configures the X.AI provider.
type Option func(*Provider)

// WithModel selects the model identifier.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithBaseURL points the adapter at a non-default endpoint.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithEmbeddingModel enables the embeddings operation with the given model.
func WithEmbeddingModel(model string) Option {
	return func(p *Provider) { p.embeddingModel = model }
}

// WithSystem sets the system prompt prepended to every conversation.
func WithSystem(system string) Option {
	return func(p *Provider) { p.system = system }
}

// WithTimeout bounds every request round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = timeout }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.client = client }
}

// WithDefaults sets provider-level generation defaults. Per-call request
// options take precedence.
func WithDefaults(options ...provider.RequestOption) Option {
	return func(p *Provider) {
		for _, opt := range options {
			opt(&p.defaults)
		}
	}
}

// New creates an X.AI provider with the given API key.
func New(apiKey string, options ...Option) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		client:  &http.Client{},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return backendName }

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireChatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   *int64        `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
	TopP        *float64      `json:"top_p,omitempty"`
	TopK        *int64        `json:"top_k,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

func (p *Provider) Chat(ctx context.Context, messages []provider.Message, opts ...provider.RequestOption) (string, error) {
	if p.apiKey == "" {
		return "", provider.NewAuthError(backendName, "missing API key")
	}

	ro := p.defaults
	for _, opt := range opts {
		opt(&ro)
	}

	wireMessages := make([]wireMessage, 0, len(messages)+1)
	if p.system != "" && !hasSystem(messages) {
		wireMessages = append(wireMessages, wireMessage{Role: "system", Content: p.system})
	}
	for _, m := range messages {
		wireMessages = append(wireMessages, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(wireChatRequest{
		Model:       p.model,
		Messages:    wireMessages,
		MaxTokens:   ro.MaxTokens,
		Temperature: ro.Temperature,
		TopP:        ro.TopP,
		TopK:        ro.TopK,
		Stop:        ro.Stop,
	})
	if err != nil {
		return "", provider.NewTransportError(backendName, "failed to encode request", err)
	}

	raw, err := p.post(ctx, "/v1/chat/completions", body)
	if err != nil {
		return "", err
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return "", provider.NewProviderError(backendName, "no choices returned")
	}
	return content.String(), nil
}

func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	// X.AI has no dedicated completion endpoint; a single user turn over the
	// chat surface is the supported equivalent.
	var opts []provider.RequestOption
	if req.Options.Temperature != nil {
		opts = append(opts, provider.WithTemperature(*req.Options.Temperature))
	}
	if req.Options.MaxTokens != nil {
		opts = append(opts, provider.WithMaxTokens(*req.Options.MaxTokens))
	}
	if req.Options.TopP != nil {
		opts = append(opts, provider.WithTopP(*req.Options.TopP))
	}
	if req.Options.TopK != nil {
		opts = append(opts, provider.WithTopK(*req.Options.TopK))
	}
	if len(req.Options.Stop) > 0 {
		opts = append(opts, provider.WithStop(req.Options.Stop...))
	}

	text, err := p.Chat(ctx, []provider.Message{provider.User(req.Prompt)}, opts...)
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	return provider.CompletionResponse{Text: text}, nil
}

func (p *Provider) Embed(ctx context.Context, input []string) ([][]float64, error) {
	if p.apiKey == "" {
		return nil, provider.NewAuthError(backendName, "missing API key")
	}
	if p.embeddingModel == "" {
		return nil, provider.NewProviderError(backendName, "no embedding model configured")
	}

	body, err := json.Marshal(struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}{Model: p.embeddingModel, Input: input})
	if err != nil {
		return nil, provider.NewTransportError(backendName, "failed to encode request", err)
	}

	raw, err := p.post(ctx, "/v1/embeddings", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, provider.NewTransportError(backendName, "failed to decode response", err)
	}
	if len(parsed.Data) == 0 {
		return nil, provider.NewProviderError(backendName, "no embeddings returned")
	}

	vectors := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func hasSystem(messages []provider.Message) bool {
	for _, m := range messages {
		if m.Role == provider.RoleSystem {
			return true
		}
	}
	return false
}

func (p *Provider) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, provider.NewTransportError(backendName, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, provider.NewTransportError(backendName, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewTransportError(backendName, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := gjson.GetBytes(raw, "error.message").String()
		if message == "" {
			message = gjson.GetBytes(raw, "error").String()
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, provider.NewAuthError(backendName, message)
		default:
			return nil, provider.NewProviderError(backendName, message)
		}
	}
	return raw, nil
}
