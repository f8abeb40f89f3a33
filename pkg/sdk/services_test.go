package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// recorded captures one request seen by the test server.
type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newRecordingServer(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestRecommend(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{
		"summary": "Two picks under budget",
		"products": [
			{"id": "drill-01", "name": "Cordless Drill", "price": 89.99,
			 "category": "Power Tools", "reasoning": "fits the task"},
			{"id": "glove-01", "name": "Work Gloves", "price": 12.0}
		]
	}`)

	c, _ := New(srv.URL)
	out, err := c.Recommend(context.Background(), RecommendationRequest{
		Description: "drill for a weekend project",
		Budget:      150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/v1/recommendations" {
		t.Errorf("request = %s %s, want POST /v1/recommendations", rec.method, rec.path)
	}
	if rec.body["description"] != "drill for a weekend project" {
		t.Errorf("description = %v", rec.body["description"])
	}
	if rec.body["budget"] != 150.0 {
		t.Errorf("budget = %v, want 150", rec.body["budget"])
	}

	if out.Summary != "Two picks under budget" {
		t.Errorf("summary = %q", out.Summary)
	}
	if len(out.Products) != 2 {
		t.Fatalf("products = %d, want 2", len(out.Products))
	}
	if out.Products[0].ID != "drill-01" || out.Products[0].Reasoning != "fits the task" {
		t.Errorf("unexpected first product: %+v", out.Products[0])
	}
}

func TestCart_AddItem(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{
		"id": "c1",
		"items": [{"product_id": "drill-01", "name": "Cordless Drill",
		           "unit_price": 89.99, "quantity": 2, "line_total": 179.98}]
	}`)

	c, _ := New(srv.URL)
	cart, err := c.Cart("c1").AddItem(context.Background(), "drill-01", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/v1/carts/c1/items" {
		t.Errorf("request = %s %s, want POST /v1/carts/c1/items", rec.method, rec.path)
	}
	if rec.body["product_id"] != "drill-01" || rec.body["quantity"] != 2.0 {
		t.Errorf("body = %v", rec.body)
	}
	if len(cart.Items) != 1 || cart.Items[0].LineTotal != 179.98 {
		t.Errorf("unexpected cart: %+v", cart)
	}
}

func TestCart_SetQuantity(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"id": "c1", "items": []}`)

	c, _ := New(srv.URL)
	if _, err := c.Cart("c1").SetQuantity(context.Background(), "drill-01", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPatch || rec.path != "/v1/carts/c1/items/drill-01" {
		t.Errorf("request = %s %s, want PATCH /v1/carts/c1/items/drill-01", rec.method, rec.path)
	}
	if rec.body["quantity"] != 5.0 {
		t.Errorf("quantity = %v, want 5", rec.body["quantity"])
	}
}

func TestCart_RemoveItem(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"id": "c1", "items": []}`)

	c, _ := New(srv.URL)
	cart, err := c.Cart("c1").RemoveItem(context.Background(), "drill-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodDelete || rec.path != "/v1/carts/c1/items/drill-01" {
		t.Errorf("request = %s %s", rec.method, rec.path)
	}
	if len(cart.Items) != 0 {
		t.Errorf("items = %d, want 0", len(cart.Items))
	}
}

func TestCart_Summary(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{
		"totals": {"subtotal": 173.5, "tax": 13.88, "total": 187.38, "remaining": 12.62},
		"breakdown": [
			{"category": "Plumbing", "amount": 149.5},
			{"category": "Safety", "amount": 24.0}
		]
	}`)

	c, _ := New(srv.URL)
	summary, err := c.Cart("c1").Summary(context.Background(), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.path != "/v1/carts/c1/summary" || rec.query != "budget=200" {
		t.Errorf("request = %s?%s", rec.path, rec.query)
	}
	if summary.Totals.Total != 187.38 {
		t.Errorf("total = %v", summary.Totals.Total)
	}
	if len(summary.Breakdown) != 2 || summary.Breakdown[0].Category != "Plumbing" {
		t.Errorf("unexpected breakdown: %+v", summary.Breakdown)
	}
}

func TestCart_Summary_NoBudgetOmitsQuery(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK,
		`{"totals": {}, "breakdown": []}`)

	c, _ := New(srv.URL)
	if _, err := c.Cart("c1").Summary(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.query != "" {
		t.Errorf("query = %q, want empty", rec.query)
	}
}

func TestCart_Fit(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{
		"cart": {"id": "c1", "items": [{"product_id": "glove-01", "name": "Gloves",
		         "unit_price": 12, "quantity": 1, "line_total": 12}]},
		"removed": [{"product_id": "sink-01", "name": "Steel Sink",
		             "unit_price": 149.5, "quantity": 1, "line_total": 149.5}],
		"totals": {"subtotal": 12, "tax": 0.96, "total": 12.96, "remaining": 87.04},
		"feasible": true
	}`)

	c, _ := New(srv.URL)
	fit, err := c.Cart("c1").Fit(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/v1/carts/c1/fit" {
		t.Errorf("request = %s %s", rec.method, rec.path)
	}
	if rec.body["budget"] != 100.0 {
		t.Errorf("budget = %v, want 100", rec.body["budget"])
	}
	if !fit.Feasible {
		t.Error("feasible = false, want true")
	}
	if len(fit.Removed) != 1 || fit.Removed[0].ProductID != "sink-01" {
		t.Errorf("unexpected removed: %+v", fit.Removed)
	}
}

func TestCart_Trim(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{
		"cart": {"id": "c1", "items": [{"product_id": "glove-01", "name": "Gloves",
		         "unit_price": 12, "quantity": 7, "line_total": 84}]},
		"reduced": 1
	}`)

	c, _ := New(srv.URL)
	trim, err := c.Cart("c1").Trim(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/v1/carts/c1/trim" {
		t.Errorf("request = %s %s", rec.method, rec.path)
	}
	if trim.Reduced != 1 {
		t.Errorf("reduced = %d, want 1", trim.Reduced)
	}
	if trim.Cart.Items[0].Quantity != 7 {
		t.Errorf("quantity = %d, want 7", trim.Cart.Items[0].Quantity)
	}
}

func TestCart_Clear(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusNoContent, "")

	c, _ := New(srv.URL)
	if err := c.Cart("c1").Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.method != http.MethodDelete || rec.path != "/v1/carts/c1" {
		t.Errorf("request = %s %s, want DELETE /v1/carts/c1", rec.method, rec.path)
	}
}

func TestCart_EscapesCartID(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"id": "a b", "items": []}`)

	c, _ := New(srv.URL)
	if _, err := c.Cart("a b").Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/v1/carts/a b" {
		t.Errorf("decoded path = %q, want /v1/carts/a b", rec.path)
	}
}

func TestUsage(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{
		"period": "day",
		"period_start_at": "2026-09-01T00:00:00Z",
		"period_end_at": "2026-09-02T00:00:00Z",
		"usage": {"tokens": 1500},
		"budget": {"tokens_limit": 10000, "tokens_remaining": 8500,
		           "is_exhausted": false, "resets_at": "2026-09-02T00:00:00Z"}
	}`)

	c, _ := New(srv.URL)
	report, err := c.Usage(context.Background(), "day")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.path != "/v1/usage" || rec.query != "period=day" {
		t.Errorf("request = %s?%s", rec.path, rec.query)
	}
	if report.Usage.Tokens != 1500 {
		t.Errorf("tokens = %d, want 1500", report.Usage.Tokens)
	}
	if report.Budget.TokensRemaining != 8500 {
		t.Errorf("remaining = %d, want 8500", report.Budget.TokensRemaining)
	}
}

func TestHealth_OK(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK,
		`{"status": "ok", "checks": {"database": "ok", "assistant": "ok"}}`)

	c, _ := New(srv.URL)
	report, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != "ok" {
		t.Errorf("status = %q, want ok", report.Status)
	}
	if report.Checks["database"] != "ok" {
		t.Errorf("database check = %q", report.Checks["database"])
	}
}

func TestHealth_DegradedStillDecodes(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusServiceUnavailable,
		`{"status": "degraded", "checks": {"database": "ok", "assistant": "error"}}`)

	c, _ := New(srv.URL)
	report, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != "degraded" {
		t.Errorf("status = %q, want degraded", report.Status)
	}
	if report.Checks["assistant"] != "error" {
		t.Errorf("assistant check = %q, want error", report.Checks["assistant"])
	}
}
