package llmchain

import (
	"net/http"
	"time"

	"github.com/casualjim/llmchain/provider"
	"github.com/casualjim/llmchain/provider/anthropic"
	"github.com/casualjim/llmchain/provider/ollama"
	"github.com/casualjim/llmchain/provider/openai"
	"github.com/casualjim/llmchain/provider/xai"
	"github.com/fogfish/opts"
	"github.com/openai/openai-go/option"
)

// Backend identifies a vendor adapter in the backend table. The same strings
// are natural provider ids for registry registration.
type Backend string

const (
	OpenAI    Backend = "openai"
	Anthropic Backend = "anthropic"
	Ollama    Backend = "ollama"
	XAI       Backend = "xai"
)

// Config is the validated construction surface for a provider. It is checked
// eagerly by New: an unknown backend or a missing credential fails at build
// time, not on the first request.
type Config struct {
	apiKey     string
	baseURL    string
	model      string
	system     string
	timeout    time.Duration
	httpClient *http.Client
	defaults   []provider.RequestOption
	validator  provider.ValidatorFn
	attempts   int
}

var (
	// WithAPIKey sets the vendor credential.
	WithAPIKey = opts.ForName[Config, string]("apiKey")
	// WithBaseURL points the adapter at a non-default endpoint, e.g. a
	// self-hosted instance or a test server.
	WithBaseURL = opts.ForName[Config, string]("baseURL")
	// WithModel selects the model identifier.
	WithModel = opts.ForName[Config, string]("model")
	// WithSystem sets a system prompt prepended to every conversation.
	WithSystem = opts.ForName[Config, string]("system")
	// WithTimeout bounds every request round trip.
	WithTimeout = opts.ForName[Config, time.Duration]("timeout")
	// WithHTTPClient substitutes the HTTP client used by the adapter.
	WithHTTPClient = opts.ForName[Config, *http.Client]("httpClient")
)

// WithDefaults sets provider-level generation parameter defaults. Per-call
// request options still take precedence.
func WithDefaults(options ...provider.RequestOption) opts.Option[Config] {
	return opts.Type[Config](func(c *Config) error {
		c.defaults = append(c.defaults, options...)
		return nil
	})
}

// WithValidator wraps the built provider in a validating decorator with the
// given predicate and attempt budget.
func WithValidator(fn provider.ValidatorFn, attempts int) opts.Option[Config] {
	return opts.Type[Config](func(c *Config) error {
		c.validator = fn
		c.attempts = attempts
		return nil
	})
}

// backends is the explicit registration table: every available vendor
// adapter, keyed by its backend identifier. An unavailable backend fails
// fast here rather than deep inside a dispatch call.
var backends = map[Backend]func(Config) (provider.Provider, error){
	OpenAI:    newOpenAI,
	Anthropic: newAnthropic,
	Ollama:    newOllama,
	XAI:       newXAI,
}

// New builds a configured provider for the given backend. Configuration is
// validated eagerly; when a validator is configured the provider is wrapped
// in a validating decorator before being returned.
func New(backend Backend, options ...opts.Option[Config]) (provider.Provider, error) {
	cfg := Config{}
	if err := opts.Apply(&cfg, options); err != nil {
		return nil, err
	}

	construct, ok := backends[backend]
	if !ok {
		return nil, provider.NewConfigError("unknown backend %q", backend)
	}

	p, err := construct(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.validator != nil {
		return provider.WithValidation(p, cfg.validator, cfg.attempts)
	}
	return p, nil
}

func newOpenAI(cfg Config) (provider.Provider, error) {
	if cfg.apiKey == "" {
		return nil, provider.NewConfigError("no API key provided for openai")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.timeout))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}

	vendorOpts := []openai.Option{
		openai.WithRequestOptions(reqOpts...),
		openai.WithDefaults(cfg.defaults...),
	}
	if cfg.model != "" {
		vendorOpts = append(vendorOpts, openai.WithModel(cfg.model))
	}
	if cfg.system != "" {
		vendorOpts = append(vendorOpts, openai.WithSystem(cfg.system))
	}
	return openai.New(vendorOpts...), nil
}

func newAnthropic(cfg Config) (provider.Provider, error) {
	if cfg.apiKey == "" {
		return nil, provider.NewConfigError("no API key provided for anthropic")
	}

	vendorOpts := []anthropic.Option{anthropic.WithDefaults(cfg.defaults...)}
	if cfg.baseURL != "" {
		vendorOpts = append(vendorOpts, anthropic.WithBaseURL(cfg.baseURL))
	}
	if cfg.model != "" {
		vendorOpts = append(vendorOpts, anthropic.WithModel(cfg.model))
	}
	if cfg.system != "" {
		vendorOpts = append(vendorOpts, anthropic.WithSystem(cfg.system))
	}
	if cfg.timeout > 0 {
		vendorOpts = append(vendorOpts, anthropic.WithTimeout(cfg.timeout))
	}
	if cfg.httpClient != nil {
		vendorOpts = append(vendorOpts, anthropic.WithHTTPClient(cfg.httpClient))
	}
	return anthropic.New(cfg.apiKey, vendorOpts...), nil
}

func newOllama(cfg Config) (provider.Provider, error) {
	vendorOpts := []ollama.Option{ollama.WithDefaults(cfg.defaults...)}
	if cfg.baseURL != "" {
		vendorOpts = append(vendorOpts, ollama.WithBaseURL(cfg.baseURL))
	}
	if cfg.model != "" {
		vendorOpts = append(vendorOpts, ollama.WithModel(cfg.model))
	}
	if cfg.system != "" {
		vendorOpts = append(vendorOpts, ollama.WithSystem(cfg.system))
	}
	if cfg.timeout > 0 {
		vendorOpts = append(vendorOpts, ollama.WithTimeout(cfg.timeout))
	}
	if cfg.httpClient != nil {
		vendorOpts = append(vendorOpts, ollama.WithHTTPClient(cfg.httpClient))
	}
	return ollama.New(vendorOpts...), nil
}

func newXAI(cfg Config) (provider.Provider, error) {
	if cfg.apiKey == "" {
		return nil, provider.NewConfigError("no API key provided for xai")
	}

	vendorOpts := []xai.Option{xai.WithDefaults(cfg.defaults...)}
	if cfg.baseURL != "" {
		vendorOpts = append(vendorOpts, xai.WithBaseURL(cfg.baseURL))
	}
	if cfg.model != "" {
		vendorOpts = append(vendorOpts, xai.WithModel(cfg.model))
	}
	if cfg.system != "" {
		vendorOpts = append(vendorOpts, xai.WithSystem(cfg.system))
	}
	if cfg.timeout > 0 {
		vendorOpts = append(vendorOpts, xai.WithTimeout(cfg.timeout))
	}
	if cfg.httpClient != nil {
		vendorOpts = append(vendorOpts, xai.WithHTTPClient(cfg.httpClient))
	}
	return xai.New(cfg.apiKey, vendorOpts...), nil
}
