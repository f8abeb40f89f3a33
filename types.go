package cartwright

import "github.com/quotient-labs/cartwright/internal/domain"

// Public aliases for the engine's domain types. The embedded API and the
// HTTP server share the same semantics; these names are the stable surface.
type (
	// Product is one catalog entry.
	Product = domain.Product
	// Intent is a recommendation request: free-text description,
	// optional category, optional budget ceiling.
	Intent = domain.Intent
	// Selection is a recommendation outcome: up to six products plus a summary.
	Selection = domain.Selection
	// SelectedProduct is a product with the assistant's reasoning attached.
	SelectedProduct = domain.SelectedProduct
	// Cart is a session's working set of line items.
	Cart = domain.Cart
	// LineItem is one product entry in a cart.
	LineItem = domain.LineItem
	// Totals is the derived cost view of a cart against a budget.
	Totals = domain.Totals
	// CategoryShare is one row of the per-category cost breakdown.
	CategoryShare = domain.CategoryShare
	// FitResult reports the outcome of the greedy budget fitter.
	FitResult = domain.FitResult
	// UsageReport describes assistant token consumption for one period.
	UsageReport = domain.UsageReport
	// UsagePeriod selects the usage reporting window.
	UsagePeriod = domain.UsagePeriod
)

// Usage reporting windows.
const (
	PeriodDay   = domain.PeriodDay
	PeriodMonth = domain.PeriodMonth
)

// Sentinel errors surfaced by engine operations.
var (
	ErrNoSearchCriteria       = domain.ErrNoSearchCriteria
	ErrProductNotFound        = domain.ErrProductNotFound
	ErrLineItemNotFound       = domain.ErrLineItemNotFound
	ErrAssistantUnavailable   = domain.ErrAssistantUnavailable
	ErrAssistantQuotaExceeded = domain.ErrAssistantQuotaExceeded
)

// CartSummary is the derived view of a cart: totals plus the category
// breakdown sorted descending by amount.
type CartSummary struct {
	Totals    Totals
	Breakdown []CategoryShare
}

// HealthReport aggregates component health checks.
type HealthReport struct {
	Status string
	Checks map[string]string
}
