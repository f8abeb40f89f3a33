package cart

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/domain"
)

// Store is the persistence contract for session carts. Save replaces the
// whole item list atomically.
type Store interface {
	Load(ctx context.Context, cartID string) (domain.Cart, error)
	Save(ctx context.Context, cartID string, c *domain.Cart) error
	Delete(ctx context.Context, cartID string) error
}

// Catalog resolves product ids for cart additions.
type Catalog interface {
	Get(ctx context.Context, id string) (domain.Product, error)
}

// Summary is the derived view of a cart against a budget.
type Summary struct {
	Totals    domain.Totals
	Breakdown []domain.CategoryShare
}

// Service owns cart mutations. Mutations on the same cart id are
// serialized through a per-cart mutex so load-modify-save never
// interleaves.
type Service struct {
	store   Store
	catalog Catalog
	taxRate float64
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a cart service.
func New(store Store, catalog Catalog, taxRate float64, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		taxRate: taxRate,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one cart id, creating it on first use.
func (s *Service) lockFor(cartID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[cartID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[cartID] = l
	}
	return l
}

// AddProduct resolves the product and merges it into the cart. Adding an
// id already in the cart increments its quantity.
func (s *Service) AddProduct(ctx context.Context, cartID, productID string, qty int) (domain.Cart, error) {
	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("resolve product: %w", err)
	}

	l := s.lockFor(cartID)
	l.Lock()
	defer l.Unlock()

	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	c.Add(p, qty)

	if err := s.store.Save(ctx, cartID, &c); err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}

	s.logger.Debug("Product added to cart",
		zap.String("cart_id", cartID),
		zap.String("product_id", productID),
		zap.Int("quantity", qty),
		zap.Int("items", len(c.Items)),
	)
	return c, nil
}

// SetQuantity sets a line item's quantity, clamped to a minimum of 1.
func (s *Service) SetQuantity(ctx context.Context, cartID, itemID string, qty int) (domain.Cart, error) {
	l := s.lockFor(cartID)
	l.Lock()
	defer l.Unlock()

	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	if !c.SetQuantity(itemID, qty) {
		return domain.Cart{}, domain.ErrLineItemNotFound
	}

	if err := s.store.Save(ctx, cartID, &c); err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// RemoveItem deletes a line item from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (domain.Cart, error) {
	l := s.lockFor(cartID)
	l.Lock()
	defer l.Unlock()

	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	if !c.Remove(itemID) {
		return domain.Cart{}, domain.ErrLineItemNotFound
	}

	if err := s.store.Save(ctx, cartID, &c); err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// Get returns the cart as stored. A never-written cart id yields an
// empty cart, not an error.
func (s *Service) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

// Summarize derives totals and the category breakdown against a budget.
// Read-only, so no cart lock is taken.
func (s *Service) Summarize(ctx context.Context, cartID string, budget float64) (Summary, error) {
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return Summary{}, fmt.Errorf("load cart: %w", err)
	}
	return Summary{
		Totals:    c.Totals(budget, s.taxRate),
		Breakdown: c.Breakdown(),
	}, nil
}

// Fit runs the greedy budget fitter and persists the reduced cart.
func (s *Service) Fit(ctx context.Context, cartID string, budget float64) (domain.Cart, domain.FitResult, error) {
	l := s.lockFor(cartID)
	l.Lock()
	defer l.Unlock()

	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, domain.FitResult{}, fmt.Errorf("load cart: %w", err)
	}

	result := c.FitToBudget(budget, s.taxRate)

	if err := s.store.Save(ctx, cartID, &c); err != nil {
		return domain.Cart{}, domain.FitResult{}, fmt.Errorf("save cart: %w", err)
	}

	s.logger.Info("Cart fitted to budget",
		zap.String("cart_id", cartID),
		zap.Float64("budget", budget),
		zap.Int("removed", len(result.Removed)),
		zap.Bool("feasible", result.Feasible),
	)
	return c, result, nil
}

// Trim applies the quantity-reduction pass and persists the cart.
// Returns the cart and the number of line items reduced.
func (s *Service) Trim(ctx context.Context, cartID string) (domain.Cart, int, error) {
	l := s.lockFor(cartID)
	l.Lock()
	defer l.Unlock()

	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, 0, fmt.Errorf("load cart: %w", err)
	}

	changed := c.TrimQuantities()

	if err := s.store.Save(ctx, cartID, &c); err != nil {
		return domain.Cart{}, 0, fmt.Errorf("save cart: %w", err)
	}
	return c, changed, nil
}

// Clear drops the cart entirely. Clearing an absent cart is a no-op.
// The cart's mutex is released from the lock map so the map stays
// bounded by the number of live carts.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	l := s.lockFor(cartID)
	l.Lock()
	defer l.Unlock()

	if err := s.store.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.mu.Lock()
	delete(s.locks, cartID)
	s.mu.Unlock()
	return nil
}
