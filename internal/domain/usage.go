package domain

import "context"

type tokenUsageKey struct{}

// TokenUsage collects model token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// services add to it after each model call; the handler reads it for response headers.
type TokenUsage struct {
	CompletionTokens int
	EmbeddingTokens  int
	Calls            int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// AddCompletion records tokens consumed by a chat completion.
func (u *TokenUsage) AddCompletion(n int) {
	if u != nil {
		u.CompletionTokens += n
		u.Calls++
	}
}

// AddEmbedding records tokens consumed by an embedding call (0 on a cache hit).
func (u *TokenUsage) AddEmbedding(n int) {
	if u != nil {
		u.EmbeddingTokens += n
		u.Calls++
	}
}

// Total returns all tokens consumed so far.
func (u *TokenUsage) Total() int {
	if u == nil {
		return 0
	}
	return u.CompletionTokens + u.EmbeddingTokens
}
