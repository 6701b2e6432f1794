package llmchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/casualjim/llmchain/pkg/slogx"
	"github.com/casualjim/llmchain/pkg/uuidx"
	"github.com/casualjim/llmchain/provider"
	"github.com/fogfish/opts"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StepMode selects how a step's rendered template is sent to its provider.
type StepMode uint8

const (
	// ModeChat sends the rendered template as a single user message.
	ModeChat StepMode = iota
	// ModeCompletion sends the rendered template as a raw completion prompt.
	ModeCompletion
)

func (m StepMode) String() string {
	switch m {
	case ModeChat:
		return "chat"
	case ModeCompletion:
		return "completion"
	default:
		return fmt.Sprintf("StepMode(%d)", uint8(m))
	}
}

// Step is one declared unit of work within a chain: which provider to call,
// in which mode, with which template. The provider id is resolved against
// the registry at run time, not here, so registries can be composed after
// the chain is declared.
type Step struct {
	id         string
	providerID string
	mode       StepMode
	template   string
	overrides  []provider.RequestOption
}

// ID returns the step identifier, unique within its chain.
func (s Step) ID() string { return s.id }

// StepOptions attaches per-step generation parameter overrides. They are
// passed through to the provider call; absent overrides leave the provider's
// own defaults in effect.
func StepOptions(options ...provider.RequestOption) opts.Option[Step] {
	return opts.Type[Step](func(s *Step) error {
		s.overrides = append(s.overrides, options...)
		return nil
	})
}

// NewStep declares a chain step. The template may reference outputs of steps
// declared earlier in the same chain as {{id}} placeholders.
func NewStep(id, providerID string, mode StepMode, template string, options ...opts.Option[Step]) (Step, error) {
	if id == "" {
		return Step{}, provider.NewConfigError("step id must not be empty")
	}
	if providerID == "" {
		return Step{}, provider.NewConfigError("step %q: provider id must not be empty", id)
	}
	if mode != ModeChat && mode != ModeCompletion {
		return Step{}, provider.NewConfigError("step %q: unsupported mode %s", id, mode)
	}

	step := Step{id: id, providerID: providerID, mode: mode, template: template}
	if err := opts.Apply(&step, options); err != nil {
		return Step{}, err
	}
	return step, nil
}

// StepError annotates a provider or configuration failure with the id of the
// chain step it occurred in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("chain step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Chain is an ordered sequence of steps executed strictly sequentially.
// Later steps may consume earlier steps' outputs through template
// placeholders. A chain holds no run state and may be run any number of
// times, concurrently, against the same or different registries.
type Chain struct {
	steps []Step
}

// NewChain builds a chain from the given steps. Duplicate step ids are a
// construction-time error.
func NewChain(steps ...Step) (*Chain, error) {
	seen := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		if _, ok := seen[s.id]; ok {
			return nil, provider.NewConfigError("duplicate step id %q", s.id)
		}
		seen[s.id] = struct{}{}
	}
	return &Chain{steps: steps}, nil
}

// Run executes the chain's steps in declared order against reg. Each step's
// template is rendered from the outputs accumulated so far, its provider is
// resolved, and the rendered prompt dispatched according to the step mode.
//
// Any failure aborts the run immediately: no further steps execute and no
// partial result mapping is returned. On success the full mapping of step id
// to output text is returned in step order.
func (c *Chain) Run(ctx context.Context, reg *Registry) (*orderedmap.OrderedMap[string, string], error) {
	runID := uuidx.New()
	log := slog.With(slogx.Stringer("run_id", runID))
	results := orderedmap.New[string, string]()

	for _, step := range c.steps {
		rendered, err := renderTemplate(step.id, step.template, results)
		if err != nil {
			log.ErrorContext(ctx, "template rendering failed", slog.String("step", step.id), slogx.Error(err))
			return nil, err
		}

		p, err := reg.Get(step.providerID)
		if err != nil {
			return nil, &StepError{Step: step.id, Err: err}
		}

		log.DebugContext(ctx, "dispatching chain step",
			slog.String("step", step.id),
			slog.String("provider", step.providerID),
			slog.String("mode", step.mode.String()))

		var output string
		switch step.mode {
		case ModeChat:
			output, err = p.Chat(ctx, []provider.Message{provider.User(rendered)}, step.overrides...)
		case ModeCompletion:
			var resp provider.CompletionResponse
			resp, err = p.Complete(ctx, provider.CompletionRequest{
				Prompt:  rendered,
				Options: provider.BuildRequestOptions(step.overrides...),
			})
			output = resp.Text
		}
		if err != nil {
			log.ErrorContext(ctx, "chain step failed", slog.String("step", step.id), slogx.Error(err))
			return nil, &StepError{Step: step.id, Err: err}
		}

		results.Set(step.id, output)
	}

	return results, nil
}
