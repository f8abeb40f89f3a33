package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/domain"
)

type mockStore struct {
	mu        sync.Mutex
	carts     map[string]domain.Cart
	loadErr   error
	saveErr   error
	deleteErr error
	saves     int
}

func newMockStore() *mockStore {
	return &mockStore{carts: make(map[string]domain.Cart)}
}

func (m *mockStore) Load(_ context.Context, cartID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.Cart{}, m.loadErr
	}
	return m.carts[cartID], nil
}

func (m *mockStore) Save(_ context.Context, cartID string, c *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.carts[cartID] = *c
	return nil
}

func (m *mockStore) Delete(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.carts, cartID)
	return nil
}

type mockCatalog struct {
	products map[string]domain.Product
	getErr   error
}

func newMockCatalog(products ...domain.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[string]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) Get(_ context.Context, id string) (domain.Product, error) {
	if m.getErr != nil {
		return domain.Product{}, m.getErr
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func newTestService(store *mockStore, catalog *mockCatalog) *Service {
	return New(store, catalog, 0.08, zap.NewNop())
}
