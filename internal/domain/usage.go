package domain

import (
	"context"
	"sync/atomic"
)

type tokenUsageKey struct{}

// TokenUsage accumulates completion token consumption for one run.
// Completion calls across a batch run concurrently, so the counters are
// atomic. The run driver puts a collector into the context; the completion
// transport adds after every call; the summary reads it at the end.
type TokenUsage struct {
	prompt atomic.Int64
	total  atomic.Int64
	calls  atomic.Int64
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from the context.
// Returns nil when not set; Add on a nil collector is a no-op.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// Add records the tokens consumed by one completion call.
func (u *TokenUsage) Add(promptTokens, totalTokens int) {
	if u == nil {
		return
	}
	u.prompt.Add(int64(promptTokens))
	u.total.Add(int64(totalTokens))
	u.calls.Add(1)
}

// PromptTokens returns the accumulated prompt token count.
func (u *TokenUsage) PromptTokens() int64 {
	if u == nil {
		return 0
	}
	return u.prompt.Load()
}

// TotalTokens returns the accumulated total token count.
func (u *TokenUsage) TotalTokens() int64 {
	if u == nil {
		return 0
	}
	return u.total.Load()
}

// Calls returns the number of completion calls recorded.
func (u *TokenUsage) Calls() int64 {
	if u == nil {
		return 0
	}
	return u.calls.Load()
}
