package cartwright

import (
	"time"

	"go.uber.org/zap"
)

// BudgetAction defines behavior when the assistant token budget is exhausted.
type BudgetAction string

const (
	// BudgetWarn logs a warning but allows the request.
	BudgetWarn BudgetAction = "warn"
	// BudgetReject blocks the request with ErrAssistantQuotaExceeded.
	BudgetReject BudgetAction = "reject"
)

// AssistantOptions configures the LLM product selector.
// An empty APIKey leaves the assistant disabled and every recommendation
// falls back to the deterministic cheapest-first selection.
type AssistantOptions struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
	// CacheTTL enables completion caching when > 0.
	CacheTTL time.Duration
}

type engineConfig struct {
	addrs    []string
	password string

	taxRate        float64
	cartTTL        time.Duration
	candidateLimit int

	assistant AssistantOptions

	dailyTokenLimit   int64
	monthlyTokenLimit int64
	budgetAction      BudgetAction

	logger *zap.Logger
}

// Option configures the Engine.
type Option func(*engineConfig)

// WithRedis sets the Redis connection parameters.
func WithRedis(addrs []string, password string) Option {
	return func(c *engineConfig) {
		c.addrs = addrs
		c.password = password
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTaxRate sets the tax rate applied to cart subtotals. Defaults to 0.08.
func WithTaxRate(rate float64) Option {
	return func(c *engineConfig) {
		if rate >= 0 {
			c.taxRate = rate
		}
	}
}

// WithCartTTL sets how long idle carts persist. Defaults to 30 days.
func WithCartTTL(ttl time.Duration) Option {
	return func(c *engineConfig) {
		if ttl > 0 {
			c.cartTTL = ttl
		}
	}
}

// WithCandidateLimit caps how many catalog candidates are retrieved per
// recommendation. Defaults to 30.
func WithCandidateLimit(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.candidateLimit = n
		}
	}
}

// WithAssistant enables LLM-backed product selection.
func WithAssistant(opts AssistantOptions) Option {
	return func(c *engineConfig) {
		c.assistant = opts
	}
}

// WithTokenBudget sets daily and monthly assistant token limits.
// Zero means unlimited for that period.
func WithTokenBudget(daily, monthly int64, action BudgetAction) Option {
	return func(c *engineConfig) {
		c.dailyTokenLimit = daily
		c.monthlyTokenLimit = monthly
		if action == BudgetReject {
			c.budgetAction = BudgetReject
		} else {
			c.budgetAction = BudgetWarn
		}
	}
}
