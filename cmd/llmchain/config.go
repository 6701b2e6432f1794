package main

import (
	"os"
	"time"

	"github.com/casualjim/llmchain"
	"github.com/casualjim/llmchain/provider"
	"github.com/fogfish/opts"
	"github.com/spf13/viper"
)

// fileConfig is the shape of the YAML config file.
type fileConfig struct {
	Providers []providerConfig `mapstructure:"providers"`
	Steps     []stepConfig     `mapstructure:"steps"`
	Prompt    string           `mapstructure:"prompt"`
}

type providerConfig struct {
	ID          string   `mapstructure:"id"`
	Backend     string   `mapstructure:"backend"`
	Model       string   `mapstructure:"model"`
	BaseURL     string   `mapstructure:"base_url"`
	System      string   `mapstructure:"system"`
	TimeoutSecs int      `mapstructure:"timeout_seconds"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   *int64   `mapstructure:"max_tokens"`
}

type stepConfig struct {
	ID          string   `mapstructure:"id"`
	Provider    string   `mapstructure:"provider"`
	Mode        string   `mapstructure:"mode"`
	Template    string   `mapstructure:"template"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   *int64   `mapstructure:"max_tokens"`
}

func loadConfig(path string) (*fileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// apiKeyEnv maps backends to their conventional environment variables.
var apiKeyEnv = map[llmchain.Backend]string{
	llmchain.OpenAI:    "OPENAI_API_KEY",
	llmchain.Anthropic: "ANTHROPIC_API_KEY",
	llmchain.XAI:       "XAI_API_KEY",
}

func buildProvider(pc providerConfig) (provider.Provider, error) {
	backend := llmchain.Backend(pc.Backend)

	var options []opts.Option[llmchain.Config]
	if env, ok := apiKeyEnv[backend]; ok {
		options = append(options, llmchain.WithAPIKey(os.Getenv(env)))
	}
	if pc.Model != "" {
		options = append(options, llmchain.WithModel(pc.Model))
	}
	if pc.BaseURL != "" {
		options = append(options, llmchain.WithBaseURL(pc.BaseURL))
	}
	if pc.System != "" {
		options = append(options, llmchain.WithSystem(pc.System))
	}
	if pc.TimeoutSecs > 0 {
		options = append(options, llmchain.WithTimeout(time.Duration(pc.TimeoutSecs)*time.Second))
	}

	var defaults []provider.RequestOption
	if pc.Temperature != nil {
		defaults = append(defaults, provider.WithTemperature(*pc.Temperature))
	}
	if pc.MaxTokens != nil {
		defaults = append(defaults, provider.WithMaxTokens(*pc.MaxTokens))
	}
	if len(defaults) > 0 {
		options = append(options, llmchain.WithDefaults(defaults...))
	}

	return llmchain.New(backend, options...)
}

func buildRegistry(cfg *fileConfig) (*llmchain.Registry, error) {
	builder := llmchain.NewRegistry()
	for _, pc := range cfg.Providers {
		p, err := buildProvider(pc)
		if err != nil {
			return nil, err
		}
		builder.Register(pc.ID, p)
	}
	return builder.Build()
}

func buildChain(cfg *fileConfig) (*llmchain.Chain, error) {
	steps := make([]llmchain.Step, 0, len(cfg.Steps))
	for _, sc := range cfg.Steps {
		mode := llmchain.ModeChat
		if sc.Mode == "completion" {
			mode = llmchain.ModeCompletion
		}

		var overrides []provider.RequestOption
		if sc.Temperature != nil {
			overrides = append(overrides, provider.WithTemperature(*sc.Temperature))
		}
		if sc.MaxTokens != nil {
			overrides = append(overrides, provider.WithMaxTokens(*sc.MaxTokens))
		}

		step, err := llmchain.NewStep(sc.ID, sc.Provider, mode, sc.Template,
			llmchain.StepOptions(overrides...))
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return llmchain.NewChain(steps...)
}
