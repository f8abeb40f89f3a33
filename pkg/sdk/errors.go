package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from API error codes. Use errors.Is() to check;
// the full server response is available via errors.As(*APIError).
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrProductNotFound      = errors.New("product not found")
	ErrLineItemNotFound     = errors.New("line item not found")
	ErrQuotaExceeded        = errors.New("assistant quota exceeded")
	ErrCatalogUnavailable   = errors.New("catalog unavailable")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	ErrUnauthorized         = errors.New("unauthorized")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cartwright: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the server's error code onto a sentinel error.
func (e *APIError) Unwrap() error {
	if e.StatusCode == 401 {
		return ErrUnauthorized
	}
	switch e.Code {
	case "bad_request", "validation_failed":
		return ErrInvalidRequest
	case "product_not_found":
		return ErrProductNotFound
	case "line_item_not_found":
		return ErrLineItemNotFound
	case "assistant_quota_exceeded":
		return ErrQuotaExceeded
	case "catalog_unavailable":
		return ErrCatalogUnavailable
	case "assistant_unavailable":
		return ErrAssistantUnavailable
	default:
		return nil
	}
}
