package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quotient-labs/cartwright/internal/db"
	"github.com/quotient-labs/cartwright/internal/domain"
)

// keyPrefix is the KV key prefix for cart blobs.
const keyPrefix = domain.KeyPrefix + "cart:"

// store is the consumer interface for cart persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Store persists carts as JSON blobs with a sliding TTL. Every save
// rewrites the whole cart, so abandoned carts expire ttl after the
// last modification.
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a cart store. ttl <= 0 disables expiry refreshes by
// falling back to a 30 day default.
func New(s store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Store{store: s, ttl: ttl}
}

// Load returns the cart for the given ID. Missing or expired carts
// load as empty: a cart exists as soon as somebody names it.
func (s *Store) Load(ctx context.Context, cartID string) (domain.Cart, error) {
	data, err := s.store.Get(ctx, cartKey(cartID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Cart{}, nil
		}
		return domain.Cart{}, fmt.Errorf("load cart %s: %w", cartID, err)
	}

	var dto cartDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Cart{}, fmt.Errorf("unmarshal cart %s: %w", cartID, err)
	}
	return dto.toDomain(), nil
}

// Save replaces the stored cart and refreshes its TTL.
func (s *Store) Save(ctx context.Context, cartID string, c *domain.Cart) error {
	data, err := json.Marshal(fromDomain(c))
	if err != nil {
		return fmt.Errorf("marshal cart %s: %w", cartID, err)
	}
	if err := s.store.SetWithTTL(ctx, cartKey(cartID), data, s.ttl); err != nil {
		return fmt.Errorf("save cart %s: %w", cartID, err)
	}
	return nil
}

// Delete removes the cart blob. Deleting a missing cart is a no-op.
func (s *Store) Delete(ctx context.Context, cartID string) error {
	if err := s.store.Del(ctx, cartKey(cartID)); err != nil {
		return fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	return nil
}

func cartKey(id string) string {
	return keyPrefix + id
}
