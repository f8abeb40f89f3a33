package domain

import (
	"strconv"
	"strings"
)

// Product is a catalog row eligible for recommendation. Owned by the
// catalog store; read-only to the engine.
type Product struct {
	ID        string
	Name      string
	Price     float64
	Category  string
	ImageURL  string
	VendorURL string
}

// Intent is the structured request derived from user input.
// Budget 0 means no ceiling; Category may be empty.
type Intent struct {
	Description string
	Category    string
	Budget      float64
}

// HasCriteria reports whether the intent carries any search signal.
func (i Intent) HasCriteria() bool {
	return strings.TrimSpace(i.Description) != "" || strings.TrimSpace(i.Category) != ""
}

// CatalogFilter is the request shape handed to the catalog store.
// Terms are OR'd substring matches against both product name and category.
type CatalogFilter struct {
	Terms        []string
	PriceCeiling float64 // 0 = unbounded
	Limit        int
}

// CoercePrice parses a stored price with lenient semantics: surrounding
// whitespace and a leading currency sign are tolerated, anything that
// still fails to parse (or is negative) coerces to 0 rather than failing
// the pipeline.
func CoercePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
