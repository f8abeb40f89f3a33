package domain

import (
	"math"
	"sort"
)

// LineItem is one product entry in a working cart. Quantity is always >= 1;
// removal is an explicit operation, never a side effect of a quantity edit.
type LineItem struct {
	ID        string
	Name      string
	Category  string
	UnitPrice float64
	Quantity  int
}

// LineTotal returns unit price times quantity.
func (li LineItem) LineTotal() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// Cart is the working set of chosen line items for one session.
// Methods mutate the receiver; persistence replaces the whole item list
// atomically, so callers serialize mutations per session.
type Cart struct {
	Items []LineItem
}

// Totals is derived, never stored. No rounding is applied; callers format
// for display.
type Totals struct {
	Subtotal  float64
	Tax       float64
	Total     float64
	Remaining float64
}

// CategoryShare is one row of the per-category cost breakdown.
type CategoryShare struct {
	Category string
	Amount   float64
}

// FitResult reports the outcome of the greedy budget fitter.
// Feasible is false when even an empty cart could not satisfy the budget,
// i.e. no non-empty subset of the original items fits.
type FitResult struct {
	Removed  []LineItem
	Totals   Totals
	Feasible bool
}

// Add merges a product into the cart: an existing line item with the same
// id has its quantity incremented, otherwise a new item is appended.
// Quantities below 1 are treated as 1.
func (c *Cart) Add(p Product, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Items {
		if c.Items[i].ID == p.ID {
			c.Items[i].Quantity += qty
			return
		}
	}
	c.Items = append(c.Items, LineItem{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: p.Price,
		Quantity:  qty,
	})
}

// Remove deletes the line item with the given id. Returns false if absent.
func (c *Cart) Remove(id string) bool {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// SetQuantity sets a line item's quantity, clamped to a minimum of 1.
// A "set to 0" request means "set to 1", not removal. Returns false if
// the id is absent.
func (c *Cart) SetQuantity(id string, qty int) bool {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity = qty
			return true
		}
	}
	return false
}

// Subtotal sums line totals over all items.
func (c Cart) Subtotal() float64 {
	var sum float64
	for _, li := range c.Items {
		sum += li.LineTotal()
	}
	return sum
}

// Totals derives subtotal, tax, total, and remaining budget.
func (c Cart) Totals(budget, taxRate float64) Totals {
	subtotal := c.Subtotal()
	tax := subtotal * taxRate
	total := subtotal + tax
	return Totals{
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     total,
		Remaining: budget - total,
	}
}

// Breakdown groups cost by category, sorted descending by amount with
// stable ties (first-encountered category wins). Items without a category
// fall under "General". Reporting only.
func (c Cart) Breakdown() []CategoryShare {
	amounts := make(map[string]float64)
	var order []string
	for _, li := range c.Items {
		cat := li.Category
		if cat == "" {
			cat = "General"
		}
		if _, seen := amounts[cat]; !seen {
			order = append(order, cat)
		}
		amounts[cat] += li.LineTotal()
	}

	shares := make([]CategoryShare, 0, len(order))
	for _, cat := range order {
		shares = append(shares, CategoryShare{Category: cat, Amount: amounts[cat]})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount > shares[j].Amount
	})
	return shares
}

// FitToBudget repeatedly removes the single most expensive remaining line
// item (by line total) until the taxed total fits the budget or the cart
// is empty. Greedy by intent: it can over-remove compared to an optimal
// subset, trading optimality for predictability. Running it on an
// already-fitting cart removes nothing.
func (c *Cart) FitToBudget(budget, taxRate float64) FitResult {
	var removed []LineItem
	for c.Totals(budget, taxRate).Total > budget && len(c.Items) > 0 {
		worst := 0
		for i := 1; i < len(c.Items); i++ {
			if c.Items[i].LineTotal() > c.Items[worst].LineTotal() {
				worst = i
			}
		}
		removed = append(removed, c.Items[worst])
		c.Items = append(c.Items[:worst], c.Items[worst+1:]...)
	}

	feasible := len(c.Items) > 0 || len(removed) == 0
	return FitResult{
		Removed:  removed,
		Totals:   c.Totals(budget, taxRate),
		Feasible: feasible,
	}
}

// TrimQuantities multiplies every quantity by 0.7 and floors, clamped to
// a minimum of 1. A blunt cost-reduction pass: it never removes items and
// makes no budget guarantee. Returns the number of line items reduced.
func (c *Cart) TrimQuantities() int {
	changed := 0
	for i := range c.Items {
		q := int(math.Floor(float64(c.Items[i].Quantity) * 0.7))
		if q < 1 {
			q = 1
		}
		if q != c.Items[i].Quantity {
			c.Items[i].Quantity = q
			changed++
		}
	}
	return changed
}
