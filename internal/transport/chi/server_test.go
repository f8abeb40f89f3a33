package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/domain"
	cartuc "github.com/quotient-labs/cartwright/internal/usecase/cart"
	healthuc "github.com/quotient-labs/cartwright/internal/usecase/health"
	recommenduc "github.com/quotient-labs/cartwright/internal/usecase/recommend"
	usageuc "github.com/quotient-labs/cartwright/internal/usecase/usage"
)

// --- Mocks ---

type fakeCatalog struct {
	products  []domain.Product
	searchErr error
}

func (f *fakeCatalog) Search(_ context.Context, _ domain.CatalogFilter) ([]domain.Product, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.products, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

type fakeCartStore struct {
	carts map[string]domain.Cart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[string]domain.Cart)}
}

func (f *fakeCartStore) Load(_ context.Context, cartID string) (domain.Cart, error) {
	return f.carts[cartID], nil
}

func (f *fakeCartStore) Save(_ context.Context, cartID string, c *domain.Cart) error {
	f.carts[cartID] = *c
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, cartID string) error {
	delete(f.carts, cartID)
	return nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

func testRouter(t *testing.T, catalog *fakeCatalog, dbErr error) (http.Handler, *fakeCartStore) {
	t.Helper()
	logger := zap.NewNop()

	store := newFakeCartStore()
	recommendSvc := recommenduc.New(catalog, nil, 30, logger)
	cartSvc := cartuc.New(store, catalog, 0.08, logger)
	usageSvc := usageuc.New(nil)
	healthSvc := healthuc.New(&fakePinger{err: dbErr}, nil)

	s := NewServer(recommendSvc, cartSvc, usageSvc, healthSvc, logger)
	r := chi.NewRouter()
	s.Routes(r)
	return r, store
}

func catalogFixture() *fakeCatalog {
	return &fakeCatalog{products: []domain.Product{
		{ID: "101", Name: "Work Gloves", Price: 12.0, Category: "Safety"},
		{ID: "102", Name: "Cordless Drill", Price: 89.99, Category: "Power Tools"},
		{ID: "103", Name: "Steel Sink", Price: 149.5, Category: "Plumbing"},
	}}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Recommendations ---

func TestCreateRecommendation_FallbackSelection(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "POST", "/v1/recommendations", recommendationRequest{
		Description: "tools for a small bathroom remodel",
		Budget:      300,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[recommendationResponse](t, rr)
	if len(resp.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(resp.Products))
	}
	if resp.Products[0].ID != "101" {
		t.Errorf("expected cheapest product first, got %s", resp.Products[0].ID)
	}
	if resp.Summary == "" {
		t.Error("expected non-empty summary")
	}
}

func TestCreateRecommendation_NoCriteria(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "POST", "/v1/recommendations", recommendationRequest{Budget: 100})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeValidationFailed {
		t.Errorf("got code %s, want %s", resp.Code, codeValidationFailed)
	}
}

func TestCreateRecommendation_NegativeBudget(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "POST", "/v1/recommendations", recommendationRequest{
		Description: "sink",
		Budget:      -5,
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestCreateRecommendation_InvalidBody(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	req := httptest.NewRequest("POST", "/v1/recommendations", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeBadRequest {
		t.Errorf("got code %s, want %s", resp.Code, codeBadRequest)
	}
}

func TestCreateRecommendation_CatalogError(t *testing.T) {
	catalog := catalogFixture()
	catalog.searchErr = errors.New("search backend down")
	h, _ := testRouter(t, catalog, nil)

	rr := doJSON(t, h, "POST", "/v1/recommendations", recommendationRequest{
		Description: "sink",
		Budget:      100,
	})

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want 502", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeCatalogUnavailable {
		t.Errorf("got code %s, want %s", resp.Code, codeCatalogUnavailable)
	}
	if resp.Message != domain.ErrCatalogUnavailable.Error() {
		t.Errorf("got message %q, want sentinel text without backend details", resp.Message)
	}
}

// --- Cart ---

func TestAddCartItem(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "102", Quantity: 2})

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[cartResponse](t, rr)
	if resp.ID != "job-1" {
		t.Errorf("got cart id %s, want job-1", resp.ID)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if resp.Items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", resp.Items[0].Quantity)
	}
	if math.Abs(resp.Items[0].LineTotal-179.98) > 1e-9 {
		t.Errorf("expected line total 179.98, got %g", resp.Items[0].LineTotal)
	}
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "999"})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeProductNotFound {
		t.Errorf("got code %s, want %s", resp.Code, codeProductNotFound)
	}
}

func TestAddCartItem_MissingProductID(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{Quantity: 1})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestUpdateCartItem(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "101", Quantity: 1})

	rr := doJSON(t, h, "PATCH", "/v1/carts/job-1/items/101", updateItemRequest{Quantity: 5})

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[cartResponse](t, rr)
	if resp.Items[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", resp.Items[0].Quantity)
	}
}

func TestUpdateCartItem_ZeroClampsToOne(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "101", Quantity: 4})

	rr := doJSON(t, h, "PATCH", "/v1/carts/job-1/items/101", updateItemRequest{Quantity: 0})

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	resp := decodeBody[cartResponse](t, rr)
	if resp.Items[0].Quantity != 1 {
		t.Errorf("expected quantity clamped to 1, got %d", resp.Items[0].Quantity)
	}
}

func TestUpdateCartItem_NotFound(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "PATCH", "/v1/carts/job-1/items/101", updateItemRequest{Quantity: 5})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeLineItemNotFound {
		t.Errorf("got code %s, want %s", resp.Code, codeLineItemNotFound)
	}
}

func TestRemoveCartItem(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "101"})
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "102"})

	rr := doJSON(t, h, "DELETE", "/v1/carts/job-1/items/101", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	resp := decodeBody[cartResponse](t, rr)
	if len(resp.Items) != 1 || resp.Items[0].ProductID != "102" {
		t.Fatalf("expected only item 102 to remain, got %+v", resp.Items)
	}
}

func TestGetCart_EmptyIsOK(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "GET", "/v1/carts/fresh", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	resp := decodeBody[cartResponse](t, rr)
	if len(resp.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(resp.Items))
	}
}

func TestClearCart(t *testing.T) {
	h, store := testRouter(t, catalogFixture(), nil)
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "101"})

	rr := doJSON(t, h, "DELETE", "/v1/carts/job-1", nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("got %d, want 204", rr.Code)
	}
	if _, ok := store.carts["job-1"]; ok {
		t.Error("expected cart removed from store")
	}
}

func TestGetCartSummary(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "103", Quantity: 1})
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "101", Quantity: 2})

	rr := doJSON(t, h, "GET", "/v1/carts/job-1/summary?budget=500", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[summaryResponse](t, rr)

	// 149.50 + 2*12.00 = 173.50 at 8% tax
	if math.Abs(resp.Totals.Subtotal-173.5) > 1e-9 {
		t.Errorf("expected subtotal 173.50, got %g", resp.Totals.Subtotal)
	}
	if math.Abs(resp.Totals.Remaining-(500-173.5*1.08)) > 1e-9 {
		t.Errorf("unexpected remaining %g", resp.Totals.Remaining)
	}
	if len(resp.Breakdown) != 2 || resp.Breakdown[0].Category != "Plumbing" {
		t.Errorf("expected Plumbing first in breakdown, got %+v", resp.Breakdown)
	}
}

func TestGetCartSummary_InvalidBudget(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "GET", "/v1/carts/job-1/summary?budget=abc", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestFitCart(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "102"})
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "103"})

	rr := doJSON(t, h, "POST", "/v1/carts/job-1/fit", fitRequest{Budget: 100})

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[fitResponse](t, rr)
	if !resp.Feasible {
		t.Error("expected feasible result")
	}
	if len(resp.Removed) != 1 || resp.Removed[0].ProductID != "103" {
		t.Fatalf("expected item 103 removed, got %+v", resp.Removed)
	}
	if len(resp.Cart.Items) != 1 || resp.Cart.Items[0].ProductID != "102" {
		t.Fatalf("expected item 102 to remain, got %+v", resp.Cart.Items)
	}
}

func TestTrimCart(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)
	doJSON(t, h, "POST", "/v1/carts/job-1/items", addItemRequest{ProductID: "101", Quantity: 10})

	rr := doJSON(t, h, "POST", "/v1/carts/job-1/trim", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	resp := decodeBody[trimResponse](t, rr)
	if resp.Reduced != 1 {
		t.Errorf("expected 1 line reduced, got %d", resp.Reduced)
	}
	if resp.Cart.Items[0].Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", resp.Cart.Items[0].Quantity)
	}
}

// --- Usage / health ---

func TestGetUsage_DefaultsToMonth(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "GET", "/v1/usage", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	resp := decodeBody[usageResponse](t, rr)
	if resp.Period != "month" {
		t.Errorf("expected month period, got %s", resp.Period)
	}
}

func TestGetUsage_DayPeriod(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "GET", "/v1/usage?period=day", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	resp := decodeBody[usageResponse](t, rr)
	if resp.Period != "day" {
		t.Errorf("expected day period, got %s", resp.Period)
	}
}

func TestHealthCheck_OK(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), nil)

	rr := doJSON(t, h, "GET", "/health", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	resp := decodeBody[healthResponse](t, rr)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %s", resp.Status)
	}
	if resp.Checks["database"] != "ok" {
		t.Errorf("expected database ok, got %s", resp.Checks["database"])
	}
}

func TestHealthCheck_DBDown(t *testing.T) {
	h, _ := testRouter(t, catalogFixture(), errors.New("conn refused"))

	rr := doJSON(t, h, "GET", "/health", nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want 503", rr.Code)
	}
	resp := decodeBody[healthResponse](t, rr)
	if resp.Status != "degraded" {
		t.Errorf("expected degraded, got %s", resp.Status)
	}
}
