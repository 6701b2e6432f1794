package llmchain

import (
	"context"

	"github.com/casualjim/llmchain/provider"
)

// fakeProvider records every call and answers through configurable functions.
// The zero value echoes prompts back.
type fakeProvider struct {
	name string

	chatFn     func(messages []provider.Message, ro provider.RequestOptions) (string, error)
	completeFn func(req provider.CompletionRequest) (string, error)
	embedFn    func(input []string) ([][]float64, error)

	chatCalls     [][]provider.Message
	chatOptions   []provider.RequestOptions
	completeCalls []provider.CompletionRequest
	embedCalls    [][]string
}

var _ provider.Provider = (*fakeProvider)(nil)

func (f *fakeProvider) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeProvider) Chat(_ context.Context, messages []provider.Message, opts ...provider.RequestOption) (string, error) {
	ro := provider.BuildRequestOptions(opts...)
	f.chatCalls = append(f.chatCalls, messages)
	f.chatOptions = append(f.chatOptions, ro)
	if f.chatFn != nil {
		return f.chatFn(messages, ro)
	}
	if len(messages) == 0 {
		return "", nil
	}
	return messages[len(messages)-1].Content, nil
}

func (f *fakeProvider) Complete(_ context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	f.completeCalls = append(f.completeCalls, req)
	if f.completeFn != nil {
		text, err := f.completeFn(req)
		return provider.CompletionResponse{Text: text}, err
	}
	return provider.CompletionResponse{Text: req.Prompt}, nil
}

func (f *fakeProvider) Embed(_ context.Context, input []string) ([][]float64, error) {
	f.embedCalls = append(f.embedCalls, input)
	if f.embedFn != nil {
		return f.embedFn(input)
	}
	return make([][]float64, len(input)), nil
}

func (f *fakeProvider) calls() int {
	return len(f.chatCalls) + len(f.completeCalls)
}

func mustStep(id, providerID string, mode StepMode, template string) Step {
	step, err := NewStep(id, providerID, mode, template)
	if err != nil {
		panic(err)
	}
	return step
}
