package domain

// CompletionRequest is the shared prompt carrier between the matching
// usecases and the completion transport. Every prompt in the pipeline is
// constrained to a small fixed output, so MaxTokens stays in the single
// digits to low tens.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}
