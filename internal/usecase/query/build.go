// Package query turns a recommendation intent into a catalog filter.
package query

import (
	"github.com/quotient-labs/cartwright/internal/domain"
	"github.com/quotient-labs/cartwright/internal/usecase/terms"
)

// DefaultLimit caps the candidate set handed to the assistant.
const DefaultLimit = 30

// Build validates the intent and derives the catalog filter from it.
// The category joins the extracted keywords as a regular term, so a
// category-only request still matches by substring. A zero budget
// means no price ceiling.
func Build(intent domain.Intent, limit int) (domain.CatalogFilter, error) {
	if !intent.HasCriteria() {
		return domain.CatalogFilter{}, domain.ErrNoSearchCriteria
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var t []string
	if intent.Category != "" {
		t = append(t, intent.Category)
	}
	t = append(t, terms.Extract(intent.Description)...)

	return domain.CatalogFilter{
		Terms:        t,
		PriceCeiling: intent.Budget,
		Limit:        limit,
	}, nil
}
