package domain

import "context"

// Assistant is the shared text-generation contract between layers.
// Implementations wrap an external provider; decorators add caching and
// budget enforcement without the caller knowing.
type Assistant interface {
	Complete(ctx context.Context, prompt string) (CompletionResult, error)
}

// HealthChecker verifies assistant provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CompletionResult carries the raw completion text and token usage
// through the decorator chain.
type CompletionResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}
