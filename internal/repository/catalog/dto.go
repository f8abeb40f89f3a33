package catalog

import (
	"strconv"
	"strings"

	"github.com/quotient-labs/cartwright/internal/domain"
)

// toHashFields maps a product to its Redis hash representation.
func toHashFields(p *domain.Product) map[string]string {
	return map[string]string{
		"name":       p.Name,
		"price":      strconv.FormatFloat(p.Price, 'f', -1, 64),
		"category":   p.Category,
		"image_url":  p.ImageURL,
		"vendor_url": p.VendorURL,
	}
}

// fromHashFields reconstructs a product from hash fields. Prices are
// stored as plain numbers but coerced defensively: catalog imports may
// carry formatted values like "$1,299.99".
func fromHashFields(id string, fields map[string]string) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      fields["name"],
		Price:     domain.CoercePrice(fields["price"]),
		Category:  fields["category"],
		ImageURL:  fields["image_url"],
		VendorURL: fields["vendor_url"],
	}
}

func extractID(key string) string {
	return strings.TrimPrefix(key, keyPrefix)
}
