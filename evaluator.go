package llmchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/casualjim/llmchain/pkg/slogx"
	"github.com/casualjim/llmchain/pkg/uuidx"
	"github.com/casualjim/llmchain/provider"
)

// ScoringFn scores a provider response. Higher is better; the evaluator
// attaches scores but never ranks.
type ScoringFn func(text string) float64

// EvalResult is the outcome of sending the evaluation input to one provider.
type EvalResult struct {
	// Index is the provider's position in registration order.
	Index int
	// Backend is the provider's backend identifier.
	Backend string
	// Text is the provider's response.
	Text string
	// Score is the scoring function's judgement, or 0.0 when no scoring
	// function is configured.
	Score float64
}

// Evaluator runs one fixed input across several providers and scores each
// output independently.
type Evaluator struct {
	providers []provider.Provider
	scoring   ScoringFn
}

// NewEvaluator builds an evaluator over the given providers. Their order is
// preserved in the results.
func NewEvaluator(providers ...provider.Provider) *Evaluator {
	return &Evaluator{providers: providers}
}

// Scoring sets the scoring function and returns the evaluator for chaining.
func (e *Evaluator) Scoring(fn ScoringFn) *Evaluator {
	e.scoring = fn
	return e
}

// Evaluate sends the identical conversation to every provider's chat
// operation, in registration order, and scores each response. A provider
// failure aborts the evaluation immediately, annotated with the provider's
// index; a transport or auth failure is a different condition from "the
// scoring function judged this output poor" and is never scored as zero.
func (e *Evaluator) Evaluate(ctx context.Context, messages []provider.Message) ([]EvalResult, error) {
	runID := uuidx.New()
	log := slog.With(slogx.Stringer("run_id", runID))

	results := make([]EvalResult, 0, len(e.providers))
	for i, p := range e.providers {
		log.DebugContext(ctx, "evaluating provider", slog.Int("index", i), slog.String("backend", p.Name()))

		text, err := p.Chat(ctx, messages)
		if err != nil {
			return nil, &EvalError{Index: i, Backend: p.Name(), Err: err}
		}

		var score float64
		if e.scoring != nil {
			score = e.scoring(text)
		}
		results = append(results, EvalResult{Index: i, Backend: p.Name(), Text: text, Score: score})
	}
	return results, nil
}

// EvalError annotates a provider failure with the provider's position in the
// evaluation order.
type EvalError struct {
	Index   int
	Backend string
	Err     error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating provider %d (%s): %v", e.Index, e.Backend, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
