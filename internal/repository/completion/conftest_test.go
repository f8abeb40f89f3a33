package completion

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/db"
	"github.com/quotient-labs/cartwright/internal/domain"
)

type mockAssistant struct {
	result domain.CompletionResult
	err    error
	calls  int
}

func (m *mockAssistant) Complete(_ context.Context, _ string) (domain.CompletionResult, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedAssistant(t *testing.T, inner *mockAssistant) (*CachedAssistant, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ca := New(inner, ms, 15*time.Minute, nil, zap.NewNop())
	return ca, ms
}
