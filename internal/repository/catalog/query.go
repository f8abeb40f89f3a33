package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quotient-labs/cartwright/internal/domain"
)

// BuildQuery translates a catalog filter into an FT.SEARCH query string.
//
// Each term matches as an infix wildcard against name or category; term
// groups are OR-joined so any single match qualifies a product. The
// price ceiling is a closed numeric range AND-ed with the term groups.
func BuildQuery(f domain.CatalogFilter) string {
	groups := make([]string, 0, len(f.Terms))
	for _, term := range f.Terms {
		t := sanitizeTerm(term)
		if t == "" {
			continue
		}
		groups = append(groups, fmt.Sprintf("(@name:(w'*%s*') | @category:(w'*%s*'))", t, t))
	}

	var parts []string
	if len(groups) > 0 {
		parts = append(parts, "("+strings.Join(groups, " | ")+")")
	}
	if f.PriceCeiling > 0 {
		ceiling := strconv.FormatFloat(f.PriceCeiling, 'f', -1, 64)
		parts = append(parts, "@price:[-inf "+ceiling+"]")
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// sanitizeTerm lowercases and strips everything but letters and digits,
// so user text cannot inject FT query syntax.
func sanitizeTerm(term string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(term) {
		isAlpha := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if isAlpha || isDigit {
			b.WriteRune(r)
		}
	}
	return b.String()
}
