// Package ollama implements the provider contract against a local Ollama
// daemon using its native API.
package ollama

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
	backendName = "ollama"

	// DefaultBaseURL is where a locally running daemon listens.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is used when no model is configured.
	DefaultModel = "llama3.2"
)

// Provider talks to an Ollama daemon. No credentials are involved.
type Provider struct {
	baseURL  string
	model    string
	system   string
	defaults provider.RequestOptions
	client   *http.Client
}

// Option configures the Ollama provider.
type Option func(*Provider)

// WithBaseURL points the adapter at a non-default daemon address.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithModel selects the model identifier.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
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

// WithDefaults sets provider-level generation defaults. Per-call request
// options take precedence.
func WithDefaults(options ...provider.RequestOption) Option {
	return func(p *Provider) {
		for _, opt := range options {
			opt(&p.defaults)
		}
	}
}

// New creates an Ollama provider.
func New(options ...Option) *Provider {
	p := &Provider{
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

// wireOptions maps generation parameters onto Ollama's options object.
type wireOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  *int64   `json:"num_predict,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int64   `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

func makeWireOptions(ro provider.RequestOptions) *wireOptions {
	if ro.Temperature == nil && ro.MaxTokens == nil && ro.TopP == nil && ro.TopK == nil && len(ro.Stop) == 0 {
		return nil
	}
	return &wireOptions{
		Temperature: ro.Temperature,
		NumPredict:  ro.MaxTokens,
		TopP:        ro.TopP,
		TopK:        ro.TopK,
		Stop:        ro.Stop,
	}
}

func (p *Provider) Chat(ctx context.Context, messages []provider.Message, opts ...provider.RequestOption) (string, error) {
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

	body, err := json.Marshal(struct {
		Model    string        `json:"model"`
		Messages []wireMessage `json:"messages"`
		Stream   bool          `json:"stream"`
		Options  *wireOptions  `json:"options,omitempty"`
	}{Model: p.model, Messages: wireMessages, Options: makeWireOptions(ro)})
	if err != nil {
		return "", provider.NewTransportError(backendName, "failed to encode request", err)
	}

	raw, err := p.post(ctx, "/api/chat", body)
	if err != nil {
		return "", err
	}

	content := gjson.GetBytes(raw, "message.content")
	if !content.Exists() {
		return "", provider.NewProviderError(backendName, "no message returned")
	}
	return content.String(), nil
}

func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	body, err := json.Marshal(struct {
		Model   string       `json:"model"`
		Prompt  string       `json:"prompt"`
		System  string       `json:"system,omitempty"`
		Stream  bool         `json:"stream"`
		Options *wireOptions `json:"options,omitempty"`
	}{Model: p.model, Prompt: req.Prompt, System: p.system, Options: makeWireOptions(p.merged(req.Options))})
	if err != nil {
		return provider.CompletionResponse{}, provider.NewTransportError(backendName, "failed to encode request", err)
	}

	raw, err := p.post(ctx, "/api/generate", body)
	if err != nil {
		return provider.CompletionResponse{}, err
	}

	response := gjson.GetBytes(raw, "response")
	if !response.Exists() {
		return provider.CompletionResponse{}, provider.NewProviderError(backendName, "no response returned")
	}
	return provider.CompletionResponse{Text: response.String()}, nil
}

func (p *Provider) Embed(ctx context.Context, input []string) ([][]float64, error) {
	body, err := json.Marshal(struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}{Model: p.model, Input: input})
	if err != nil {
		return nil, provider.NewTransportError(backendName, "failed to encode request", err)
	}

	raw, err := p.post(ctx, "/api/embed", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, provider.NewTransportError(backendName, "failed to decode response", err)
	}
	if len(parsed.Embeddings) == 0 {
		return nil, provider.NewProviderError(backendName, "no embeddings returned")
	}
	return parsed.Embeddings, nil
}

func (p *Provider) merged(ro provider.RequestOptions) provider.RequestOptions {
	merged := p.defaults
	if ro.Temperature != nil {
		merged.Temperature = ro.Temperature
	}
	if ro.MaxTokens != nil {
		merged.MaxTokens = ro.MaxTokens
	}
	if ro.TopP != nil {
		merged.TopP = ro.TopP
	}
	if ro.TopK != nil {
		merged.TopK = ro.TopK
	}
	if len(ro.Stop) > 0 {
		merged.Stop = ro.Stop
	}
	return merged
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
		message := gjson.GetBytes(raw, "error").String()
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, provider.NewProviderError(backendName, message)
	}
	return raw, nil
}
