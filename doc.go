/*
Package llmchain provides a unified interface over multiple LLM providers and
a small orchestration layer for composing multi-step prompt chains.

The package is built around a few abstractions:

  - Providers: one capability object per vendor (chat, completion, embeddings)
  - Registry: an immutable id-to-provider lookup table shared by chains
  - Chains: ordered steps where later steps consume earlier steps' outputs
  - Validation: a provider decorator enforcing a validity predicate with
    bounded retry-with-feedback
  - Evaluation: running one input across several providers and scoring each
    output independently

# Basic Usage

A typical flow builds providers, freezes them into a registry, and runs a
chain against it:

	gpt, err := llmchain.New(llmchain.OpenAI,
		llmchain.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
		llmchain.WithModel("gpt-4o-mini"),
	)
	if err != nil {
		// Handle error
	}

	registry, err := llmchain.NewRegistry().
		Register("openai", gpt).
		Build()
	if err != nil {
		// Handle error
	}

	analysis, _ := llmchain.NewStep("analysis", "openai", llmchain.ModeChat,
		"Summarize the tradeoffs of consistent hashing.")
	review, _ := llmchain.NewStep("review", "openai", llmchain.ModeChat,
		"Review this summary for mistakes:\n{{analysis}}",
		llmchain.StepOptions(provider.WithTemperature(0.2)))

	chain, err := llmchain.NewChain(analysis, review)
	if err != nil {
		// Handle error
	}

	results, err := chain.Run(ctx, registry)
	if err != nil {
		// Handle error
	}

# Execution Model

Chains execute strictly sequentially: a step's template may reference any
earlier step's output as a {{id}} placeholder, so step i+1 cannot start until
step i has completed. Every failure, whether a template referencing a step
that has not completed, an unknown provider id, or a vendor-side error, aborts
the run immediately and no partial results are returned.

The registry is immutable once built and safe for any number of concurrently
running chains; each run owns its own result mapping.

# Error Handling

Failures are typed: provider.ConfigError for construction problems,
provider.Error (auth, provider, transport kinds) for vendor failures,
TemplateError for unresolvable placeholders, provider.ValidationError when a
validating decorator exhausts its attempts. Chain failures are annotated with
the failing step id (StepError), evaluation failures with the provider index
(EvalError).

# Backends

Vendor adapters live under provider/ (openai, anthropic, ollama, xai) and are
wired through an explicit backend table keyed by the same identifiers used for
registry registration. See the examples directory for complete programs.
*/
package llmchain
