package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/quotient-labs/cartwright/internal/db"
	"github.com/quotient-labs/cartwright/internal/domain"
)

// IndexName is the FT index over product hashes.
const IndexName = domain.KeyPrefix + "products:idx"

// keyPrefix is the hash key prefix for products.
const keyPrefix = domain.KeyPrefix + "product:"

// store is the consumer interface for products (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchSorted(ctx context.Context, q *db.SortedQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements the catalog repository over product hashes and an FT index.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the product FT index if it does not exist yet.
// Name and category are suffix-trie TEXT fields so infix wildcard
// queries match substrings; price is SORTABLE for cheapest-first reads.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(IndexName).
		OnHash().
		Prefix(keyPrefix).
		TextWithSuffixTrie("name").
		TextWithSuffixTrie("category").
		SortableNumeric("price").
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// Upsert creates or updates a product. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domain.Product) (bool, error) {
	key := productKey(p.ID)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, toHashFields(p)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// UpsertMulti stores multiple products in a single pipelined round-trip.
func (r *Repo) UpsertMulti(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(products))
	for i := range products {
		items[i] = db.HashSetItem{
			Key:    productKey(products[i].ID),
			Fields: toHashFields(&products[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi: %w", err)
	}
	return nil
}

// Get returns a product by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Product, error) {
	key := productKey(id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.Product{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	// HGETALL returns an empty map for missing keys.
	if len(fields) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return fromHashFields(id, fields), nil
}

// Delete removes a product.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := productKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Count returns the number of indexed products.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, "*")
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// Search returns candidate products matching the filter, cheapest first.
func (r *Repo) Search(ctx context.Context, f domain.CatalogFilter) ([]domain.Product, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 30
	}

	result, err := r.store.SearchSorted(ctx, &db.SortedQuery{
		IndexName:    IndexName,
		Query:        BuildQuery(f),
		SortBy:       "price",
		Limit:        limit,
		ReturnFields: []string{"name", "price", "category", "image_url", "vendor_url"},
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	products := make([]domain.Product, 0, len(result.Entries))
	for _, entry := range result.Entries {
		products = append(products, fromHashFields(extractID(entry.Key), entry.Fields))
	}
	return products, nil
}

func productKey(id string) string {
	return keyPrefix + id
}
