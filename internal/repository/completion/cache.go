package completion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/db"
	"github.com/quotient-labs/cartwright/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "completion_cache:"

// store is the consumer interface for the completion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedAssistant caches completion text in a key-value store, keyed
// by a digest of the prompt. Identical recommendation prompts (same
// description, category, budget and candidate set) replay the cached
// answer instead of spending tokens.
type CachedAssistant struct {
	inner      domain.Assistant
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Assistant,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedAssistant {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedAssistant{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Complete returns a cached completion or calls the inner assistant.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
// Cache miss: full CompletionResult from inner.
func (c *CachedAssistant) Complete(ctx context.Context, prompt string) (domain.CompletionResult, error) {
	key := c.cacheKey(prompt)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.CompletionResult{Text: text}, nil
	}

	c.incCache("miss")

	result, err := c.inner.Complete(ctx, prompt)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("complete prompt: %w", err)
	}

	c.putToCache(ctx, key, result.Text)
	return result, nil
}

func (c *CachedAssistant) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedAssistant) cacheKey(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedAssistant) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached completion", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedAssistant) putToCache(ctx context.Context, key, text string) {
	if err := c.store.SetWithTTL(ctx, key, []byte(text), c.ttl); err != nil {
		c.logger.Warn("Failed to cache completion", zap.String("key", key), zap.Error(err))
	}
}
