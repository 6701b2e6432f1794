// Package anthropic implements the provider contract against the Anthropic
// Messages API. It speaks the wire protocol directly; there is no official
// Go SDK dependency.
package anthropic

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
	"github.com/tidwall/sjson"
)

const (
	backendName = "anthropic"

	// DefaultBaseURL is the public Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-5-sonnet-latest"
	// DefaultMaxTokens is sent when no cap is configured; the Messages API
	// requires max_tokens on every request.
	DefaultMaxTokens = int64(1024)

	apiVersion = "2023-06-01"
)

// Provider talks to the Anthropic Messages API.
type Provider struct {
	apiKey   string
	baseURL  string
	model    string
	system   string
	version  string
	defaults provider.RequestOptions
	client   *http.Client
}

// Option configures the Anthropic provider.
type Option func(*Provider)

// WithModel selects the model identifier.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithBaseURL points the adapter at a non-default endpoint.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithSystem sets the system prompt sent with every request.
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

// WithVersion overrides the anthropic-version header.
func WithVersion(version string) Option {
	return func(p *Provider) { p.version = version }
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

// New creates an Anthropic provider with the given API key.
func New(apiKey string, options ...Option) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		version: apiVersion,
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

type wireRequest struct {
	Model     string        `json:"model"`
	System    string        `json:"system,omitempty"`
	Messages  []wireMessage `json:"messages"`
	MaxTokens int64         `json:"max_tokens"`
}

func (p *Provider) Chat(ctx context.Context, messages []provider.Message, opts ...provider.RequestOption) (string, error) {
	if p.apiKey == "" {
		return "", provider.NewAuthError(backendName, "missing API key")
	}

	ro := p.defaults
	for _, opt := range opts {
		opt(&ro)
	}

	// The Messages API takes the system prompt as a top-level field, not as
	// a conversation turn.
	system := p.system
	wireMessages := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == provider.RoleSystem {
			system = m.Content
			continue
		}
		wireMessages = append(wireMessages, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	maxTokens := DefaultMaxTokens
	if ro.MaxTokens != nil {
		maxTokens = *ro.MaxTokens
	}
	body, err := json.Marshal(wireRequest{
		Model:     p.model,
		System:    system,
		Messages:  wireMessages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", provider.NewTransportError(backendName, "failed to encode request", err)
	}
	if body, err = spliceParams(body, ro); err != nil {
		return "", provider.NewTransportError(backendName, "failed to encode request", err)
	}

	raw, err := p.post(ctx, "/v1/messages", body)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range gjson.GetBytes(raw, "content").Array() {
		if block.Get("type").String() == "text" {
			text.WriteString(block.Get("text").String())
		}
	}
	if text.Len() == 0 {
		return "", provider.NewProviderError(backendName, "no content returned")
	}
	return text.String(), nil
}

func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	// There is no raw completion endpoint anymore; a single user turn over
	// the Messages API is the supported equivalent.
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
	return nil, provider.NewProviderError(backendName, "embeddings are not supported")
}

// spliceParams sets the optional generation parameters on an encoded request.
func spliceParams(body []byte, ro provider.RequestOptions) ([]byte, error) {
	var err error
	if ro.Temperature != nil {
		if body, err = sjson.SetBytes(body, "temperature", *ro.Temperature); err != nil {
			return nil, err
		}
	}
	if ro.TopP != nil {
		if body, err = sjson.SetBytes(body, "top_p", *ro.TopP); err != nil {
			return nil, err
		}
	}
	if ro.TopK != nil {
		if body, err = sjson.SetBytes(body, "top_k", *ro.TopK); err != nil {
			return nil, err
		}
	}
	if len(ro.Stop) > 0 {
		if body, err = sjson.SetBytes(body, "stop_sequences", ro.Stop); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (p *Provider) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, provider.NewTransportError(backendName, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Anthropic-Version", p.version)

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
