package assistant

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/domain"
	"github.com/quotient-labs/cartwright/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedAssistant wraps an Assistant with budget enforcement and logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
// This layer owns budget tracking and budget-related metrics only.
type InstrumentedAssistant struct {
	inner  domain.Assistant
	model  string
	budget BudgetChecker
	logger *zap.Logger
}

// NewInstrumentedAssistant wraps an assistant with budget and observability.
func NewInstrumentedAssistant(
	inner domain.Assistant, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedAssistant {
	return &InstrumentedAssistant{
		inner:  inner,
		model:  model,
		budget: budget,
		logger: logger,
	}
}

// Complete checks budget, delegates to the inner assistant, and records usage.
func (p *InstrumentedAssistant) Complete(
	ctx context.Context, prompt string,
) (domain.CompletionResult, error) {
	// Check budget before making the request
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Budget exceeded",
				zap.String("model", p.model),
				zap.Error(err),
			)
			return domain.CompletionResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()

	result, err := p.inner.Complete(ctx, prompt)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Completion request failed",
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}

	// Record token usage in budget
	if p.budget != nil && result.TotalTokens > 0 {
		p.budget.Record(int64(result.TotalTokens))
		remaining := metrics.AssistantBudgetTokensRemaining
		remaining.WithLabelValues("daily").Set(float64(p.budget.RemainingDaily()))
		remaining.WithLabelValues("monthly").Set(float64(p.budget.RemainingMonthly()))
	}

	p.logger.Debug("Completion request completed",
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("response_chars", len(result.Text)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
