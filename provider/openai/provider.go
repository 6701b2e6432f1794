package openai

import (
	"context"
	"errors"

	"github.com/casualjim/llmchain/provider"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const backendName = "openai"

// Provider talks to the OpenAI API through the official SDK.
type Provider struct {
	client          *openai.Client
	model           string
	completionModel string
	embeddingModel  string
	system          string
	defaults        provider.RequestOptions
	clientOpts      []option.RequestOption
}

// Option configures the OpenAI provider.
type Option func(*Provider)

// WithModel selects the chat model. Defaults to gpt-4o-mini.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithCompletionModel selects the model used for raw completions. Defaults to
// gpt-3.5-turbo-instruct, the only completion-capable model family OpenAI
// still serves.
func WithCompletionModel(model string) Option {
	return func(p *Provider) { p.completionModel = model }
}

// WithEmbeddingModel selects the embedding model. Defaults to
// text-embedding-3-small.
func WithEmbeddingModel(model string) Option {
	return func(p *Provider) { p.embeddingModel = model }
}

// WithSystem sets a system prompt prepended to conversations that do not
// already carry one.
func WithSystem(system string) Option {
	return func(p *Provider) { p.system = system }
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

// WithRequestOptions passes SDK request options (API key, base URL, timeout,
// HTTP client) through to the underlying client.
func WithRequestOptions(options ...option.RequestOption) Option {
	return func(p *Provider) { p.clientOpts = append(p.clientOpts, options...) }
}

// New creates an OpenAI provider. Without explicit request options the SDK
// reads OPENAI_API_KEY from the environment.
func New(options ...Option) *Provider {
	p := &Provider{
		model:           openai.ChatModelGPT4oMini,
		completionModel: string(openai.CompletionNewParamsModelGPT3_5TurboInstruct),
		embeddingModel:  string(openai.EmbeddingModelTextEmbedding3Small),
	}
	for _, opt := range options {
		opt(p)
	}
	p.client = openai.NewClient(p.clientOpts...)
	return p
}

func (p *Provider) Name() string { return backendName }

func (p *Provider) Chat(ctx context.Context, messages []provider.Message, opts ...provider.RequestOption) (string, error) {
	ro := p.requestOptions(opts)

	oaiMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if p.system != "" && !hasSystem(messages) {
		oaiMessages = append(oaiMessages, openai.SystemMessage(p.system))
	}
	for _, m := range messages {
		switch m.Role {
		case provider.RoleSystem:
			oaiMessages = append(oaiMessages, openai.SystemMessage(m.Content))
		case provider.RoleAssistant:
			oaiMessages = append(oaiMessages, openai.AssistantMessage(m.Content))
		default:
			oaiMessages = append(oaiMessages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages: openai.F(oaiMessages),
		Model:    openai.F(p.model),
	}
	if ro.Temperature != nil {
		params.Temperature = openai.Float(*ro.Temperature)
	}
	if ro.MaxTokens != nil {
		params.MaxTokens = openai.Int(*ro.MaxTokens)
	}
	if ro.TopP != nil {
		params.TopP = openai.Float(*ro.TopP)
	}
	if len(ro.Stop) > 0 {
		params.Stop = openai.F[openai.ChatCompletionNewParamsStopUnion](openai.ChatCompletionNewParamsStopArray(ro.Stop))
	}

	chat, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", mapError(err)
	}
	if len(chat.Choices) == 0 {
		return "", provider.NewProviderError(backendName, "no choices returned")
	}
	return chat.Choices[0].Message.Content, nil
}

func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	params := openai.CompletionNewParams{
		Model:  openai.F(openai.CompletionNewParamsModel(p.completionModel)),
		Prompt: openai.F[openai.CompletionNewParamsPromptUnion](shared.UnionString(req.Prompt)),
	}
	ro := p.completionOptions(req.Options)
	if ro.Temperature != nil {
		params.Temperature = openai.Float(*ro.Temperature)
	}
	if ro.MaxTokens != nil {
		params.MaxTokens = openai.Int(*ro.MaxTokens)
	}
	if ro.TopP != nil {
		params.TopP = openai.Float(*ro.TopP)
	}
	if len(ro.Stop) > 0 {
		params.Stop = openai.F[openai.CompletionNewParamsStopUnion](openai.CompletionNewParamsStopArray(ro.Stop))
	}

	completion, err := p.client.Completions.New(ctx, params)
	if err != nil {
		return provider.CompletionResponse{}, mapError(err)
	}
	if len(completion.Choices) == 0 {
		return provider.CompletionResponse{}, provider.NewProviderError(backendName, "no choices returned")
	}
	return provider.CompletionResponse{Text: completion.Choices[0].Text}, nil
}

func (p *Provider) Embed(ctx context.Context, input []string) ([][]float64, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.F[openai.EmbeddingNewParamsInputUnion](openai.EmbeddingNewParamsInputArrayOfStrings(input)),
		Model: openai.F(openai.EmbeddingModel(p.embeddingModel)),
	})
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Data) == 0 {
		return nil, provider.NewProviderError(backendName, "no embeddings returned")
	}

	vectors := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// requestOptions merges per-call options over the provider defaults.
func (p *Provider) requestOptions(opts []provider.RequestOption) provider.RequestOptions {
	ro := p.defaults
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}

func (p *Provider) completionOptions(ro provider.RequestOptions) provider.RequestOptions {
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

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return provider.NewTransportError(backendName, "request aborted", err)
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 401, 403:
			return provider.NewAuthError(backendName, apierr.Error())
		default:
			pe := provider.NewProviderError(backendName, apierr.Error())
			pe.Cause = err
			return pe
		}
	}
	return provider.NewTransportError(backendName, "request failed", err)
}
