package sdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// CartService operates on one cart session.
type CartService struct {
	client *Client
	base   string
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type fitRequest struct {
	Budget float64 `json:"budget"`
}

// AddItem adds quantity units of a catalog product, merging with an
// existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, productID string, quantity int) (Cart, error) {
	var out Cart
	err := s.client.do(ctx, http.MethodPost, s.base+"/items",
		addItemRequest{ProductID: productID, Quantity: quantity}, &out)
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

// SetQuantity replaces a line item's quantity. The server clamps values
// below 1 up to 1.
func (s *CartService) SetQuantity(ctx context.Context, itemID string, quantity int) (Cart, error) {
	var out Cart
	err := s.client.do(ctx, http.MethodPatch, s.base+"/items/"+url.PathEscape(itemID),
		updateItemRequest{Quantity: quantity}, &out)
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

// RemoveItem deletes one line item.
func (s *CartService) RemoveItem(ctx context.Context, itemID string) (Cart, error) {
	var out Cart
	err := s.client.do(ctx, http.MethodDelete, s.base+"/items/"+url.PathEscape(itemID), nil, &out)
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

// Get returns the current cart; a missing cart is an empty one.
func (s *CartService) Get(ctx context.Context) (Cart, error) {
	var out Cart
	if err := s.client.do(ctx, http.MethodGet, s.base, nil, &out); err != nil {
		return Cart{}, err
	}
	return out, nil
}

// Summary returns the cart's totals against the given budget plus the
// per-category breakdown. Budget 0 means no ceiling.
func (s *CartService) Summary(ctx context.Context, budget float64) (CartSummary, error) {
	path := s.base + "/summary"
	if budget > 0 {
		path += "?budget=" + strconv.FormatFloat(budget, 'f', -1, 64)
	}
	var out CartSummary
	if err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return CartSummary{}, err
	}
	return out, nil
}

// Fit removes the most expensive lines until the cart fits the budget.
// The reduced cart is persisted server-side.
func (s *CartService) Fit(ctx context.Context, budget float64) (FitResult, error) {
	var out FitResult
	err := s.client.do(ctx, http.MethodPost, s.base+"/fit", fitRequest{Budget: budget}, &out)
	if err != nil {
		return FitResult{}, err
	}
	return out, nil
}

// Trim reduces every line's quantity by roughly 30 percent (floor, min 1).
func (s *CartService) Trim(ctx context.Context) (TrimResult, error) {
	var out TrimResult
	if err := s.client.do(ctx, http.MethodPost, s.base+"/trim", nil, &out); err != nil {
		return TrimResult{}, err
	}
	return out, nil
}

// Clear deletes the cart entirely.
func (s *CartService) Clear(ctx context.Context) error {
	return s.client.do(ctx, http.MethodDelete, s.base, nil, nil)
}
