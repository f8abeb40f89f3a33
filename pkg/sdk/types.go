package sdk

import "time"

// RecommendationRequest describes what the user wants and how much they
// can spend. At least one of Description or Category must be set.
type RecommendationRequest struct {
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Budget      float64 `json:"budget,omitempty"`
}

// SelectedProduct is one recommended product.
type SelectedProduct struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	VendorURL string  `json:"vendor_url,omitempty"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// Recommendation is the outcome of a recommendation request.
type Recommendation struct {
	Summary  string            `json:"summary"`
	Products []SelectedProduct `json:"products"`
}

// LineItem is one product entry in a cart.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Category  string  `json:"category,omitempty"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// Cart is a session's working set of line items.
type Cart struct {
	ID    string     `json:"id"`
	Items []LineItem `json:"items"`
}

// Totals is the cost view of a cart against a budget.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
	Remaining float64 `json:"remaining"`
}

// CategoryShare is one row of the per-category cost breakdown.
type CategoryShare struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// CartSummary is totals plus the category breakdown, sorted descending
// by amount.
type CartSummary struct {
	Totals    Totals          `json:"totals"`
	Breakdown []CategoryShare `json:"breakdown"`
}

// FitResult reports the outcome of fitting a cart to a budget.
type FitResult struct {
	Cart     Cart       `json:"cart"`
	Removed  []LineItem `json:"removed"`
	Totals   Totals     `json:"totals"`
	Feasible bool       `json:"feasible"`
}

// TrimResult reports how many lines a quantity trim changed.
type TrimResult struct {
	Cart    Cart `json:"cart"`
	Reduced int  `json:"reduced"`
}

// UsageReport describes assistant token consumption for one period.
type UsageReport struct {
	Period        string       `json:"period"`
	PeriodStartAt time.Time    `json:"period_start_at"`
	PeriodEndAt   time.Time    `json:"period_end_at"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// UsageMetrics holds consumption counters for the period.
type UsageMetrics struct {
	Tokens int64 `json:"tokens"`
}

// BudgetStatus describes the token budget for the period.
// TokensLimit 0 means unlimited; TokensRemaining is -1 for an
// unlimited period.
type BudgetStatus struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

// HealthReport aggregates component health checks.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
