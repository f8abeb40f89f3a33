package recommend

import (
	"context"

	"github.com/quotient-labs/cartwright/internal/domain"
)

// Catalog searches candidate products for an intent.
type Catalog interface {
	Search(ctx context.Context, f domain.CatalogFilter) ([]domain.Product, error)
}
