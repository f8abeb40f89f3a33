package domain

// Recommendation is one entry of the assistant's parsed verdict.
// Reasoning may be empty.
type Recommendation struct {
	ProductID string
	Reasoning string
}

// SelectedProduct is a catalog product enriched with the assistant's
// reasoning. Its ID always corresponds to a candidate that was handed to
// the selection engine; unknown ids are dropped, never fabricated.
type SelectedProduct struct {
	Product
	Reasoning string
}

// Selection is the outcome of a recommendation request: up to six
// products and a human-readable summary. Summary is never empty when
// candidates existed.
type Selection struct {
	Summary  string
	Products []SelectedProduct
}
