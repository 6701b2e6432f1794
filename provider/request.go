package provider

// RequestOptions carries per-request generation parameters. Nil fields mean
// "use the provider's configured default"; backends that do not support a
// parameter ignore it.
type RequestOptions struct {
	Temperature *float64
	MaxTokens   *int64
	TopP        *float64
	TopK        *int64
	Stop        []string
}

// RequestOption mutates RequestOptions for a single call.
type RequestOption func(*RequestOptions)

// BuildRequestOptions folds a list of options into a RequestOptions value.
func BuildRequestOptions(opts ...RequestOption) RequestOptions {
	var ro RequestOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}

// WithTemperature overrides the sampling temperature for this request.
func WithTemperature(t float64) RequestOption {
	return func(o *RequestOptions) { o.Temperature = &t }
}

// WithMaxTokens caps the number of tokens generated for this request.
func WithMaxTokens(n int64) RequestOption {
	return func(o *RequestOptions) { o.MaxTokens = &n }
}

// WithTopP overrides the nucleus sampling parameter for this request.
func WithTopP(p float64) RequestOption {
	return func(o *RequestOptions) { o.TopP = &p }
}

// WithTopK overrides the top-k sampling parameter for this request.
// Backends without top-k support (OpenAI) ignore it.
func WithTopK(k int64) RequestOption {
	return func(o *RequestOptions) { o.TopK = &k }
}

// WithStop sets stop sequences for this request.
func WithStop(sequences ...string) RequestOption {
	return func(o *RequestOptions) { o.Stop = append(o.Stop, sequences...) }
}

// CompletionRequest is a raw text completion request.
type CompletionRequest struct {
	Prompt  string
	Options RequestOptions
}

// CompletionResponse is the text produced for a CompletionRequest.
type CompletionResponse struct {
	Text string
}
