package domain

import "errors"

var (
	// ErrNoSearchCriteria signals a recommendation request with neither description nor category.
	ErrNoSearchCriteria = errors.New("description or category is required")
	// ErrProductNotFound signals a missing catalog product.
	ErrProductNotFound = errors.New("product not found")
	// ErrLineItemNotFound signals a cart mutation referencing an absent line item.
	ErrLineItemNotFound = errors.New("line item not found")
	// ErrCatalogUnavailable signals a catalog store failure.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrAssistantUnavailable signals an assistant provider failure.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	// ErrAssistantQuotaExceeded signals an exhausted assistant token budget.
	ErrAssistantQuotaExceeded = errors.New("assistant token quota exceeded")
)
