package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/domain"
	cartuc "github.com/quotient-labs/cartwright/internal/usecase/cart"
	healthuc "github.com/quotient-labs/cartwright/internal/usecase/health"
	recommenduc "github.com/quotient-labs/cartwright/internal/usecase/recommend"
	usageuc "github.com/quotient-labs/cartwright/internal/usecase/usage"
)

// errorCode is the machine-readable error discriminator in responses.
type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeValidationFailed     errorCode = "validation_failed"
	codeProductNotFound      errorCode = "product_not_found"
	codeLineItemNotFound     errorCode = "line_item_not_found"
	codeQuotaExceeded        errorCode = "assistant_quota_exceeded"
	codeCatalogUnavailable   errorCode = "catalog_unavailable"
	codeAssistantUnavailable errorCode = "assistant_unavailable"
	codeInternalError        errorCode = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the recommendation and cart API over chi.
type Server struct {
	recommend     *recommenduc.Service
	carts         *cartuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	carts *cartuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		carts:     carts,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoSearchCriteria, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeProductNotFound),
		sentinelHandler(domain.ErrLineItemNotFound, http.StatusNotFound, codeLineItemNotFound),
		sentinelHandler(domain.ErrAssistantQuotaExceeded, http.StatusPaymentRequired, codeQuotaExceeded),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusBadGateway, codeCatalogUnavailable),
		sentinelHandler(domain.ErrAssistantUnavailable, http.StatusBadGateway, codeAssistantUnavailable),
	}
	return s
}

// Routes registers all API endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/recommendations", s.CreateRecommendation)

	r.Route("/v1/carts/{cart}", func(r chi.Router) {
		r.Get("/", s.GetCart)
		r.Delete("/", s.ClearCart)
		r.Post("/items", s.AddCartItem)
		r.Patch("/items/{id}", s.UpdateCartItem)
		r.Delete("/items/{id}", s.RemoveCartItem)
		r.Get("/summary", s.GetCartSummary)
		r.Post("/fit", s.FitCart)
		r.Post("/trim", s.TrimCart)
	})

	r.Get("/v1/usage", s.GetUsage)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// --- Request / response shapes ---

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type recommendationRequest struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Budget      float64 `json:"budget"`
}

type selectedProductResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	VendorURL string  `json:"vendor_url,omitempty"`
	Reasoning string  `json:"reasoning,omitempty"`
}

type recommendationResponse struct {
	Summary  string                    `json:"summary"`
	Products []selectedProductResponse `json:"products"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type lineItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Category  string  `json:"category,omitempty"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type cartResponse struct {
	ID    string             `json:"id"`
	Items []lineItemResponse `json:"items"`
}

type totalsResponse struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
	Remaining float64 `json:"remaining"`
}

type categoryShareResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type summaryResponse struct {
	Totals    totalsResponse          `json:"totals"`
	Breakdown []categoryShareResponse `json:"breakdown"`
}

type fitRequest struct {
	Budget float64 `json:"budget"`
}

type fitResponse struct {
	Cart     cartResponse       `json:"cart"`
	Removed  []lineItemResponse `json:"removed"`
	Totals   totalsResponse     `json:"totals"`
	Feasible bool               `json:"feasible"`
}

type trimResponse struct {
	Cart    cartResponse `json:"cart"`
	Reduced int          `json:"reduced"`
}

type usageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt time.Time    `json:"period_start_at"`
	PeriodEndAt   time.Time    `json:"period_end_at"`
	Usage         usageMetrics `json:"usage"`
	Budget        budgetStatus `json:"budget"`
}

type usageMetrics struct {
	Tokens int64 `json:"tokens"`
}

type budgetStatus struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// --- Handlers ---

// CreateRecommendation handles POST /v1/recommendations.
func (s *Server) CreateRecommendation(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Budget < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "budget must not be negative")
		return
	}

	sel, err := s.recommend.Recommend(r.Context(), domain.Intent{
		Description: req.Description,
		Category:    req.Category,
		Budget:      req.Budget,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	products := make([]selectedProductResponse, len(sel.Products))
	for i, p := range sel.Products {
		products[i] = selectedProductResponse{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Category:  p.Category,
			ImageURL:  p.ImageURL,
			VendorURL: p.VendorURL,
			Reasoning: p.Reasoning,
		}
	}

	writeJSON(w, http.StatusOK, recommendationResponse{
		Summary:  sel.Summary,
		Products: products,
	})
}

// AddCartItem handles POST /v1/carts/{cart}/items.
func (s *Server) AddCartItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "product_id is required")
		return
	}

	c, err := s.carts.AddProduct(r.Context(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartToResponse(cartID, c))
}

// UpdateCartItem handles PATCH /v1/carts/{cart}/items/{id}.
func (s *Server) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart")
	itemID := chi.URLParam(r, "id")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	c, err := s.carts.SetQuantity(r.Context(), cartID, itemID, req.Quantity)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartToResponse(cartID, c))
}

// RemoveCartItem handles DELETE /v1/carts/{cart}/items/{id}.
func (s *Server) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart")
	itemID := chi.URLParam(r, "id")

	c, err := s.carts.RemoveItem(r.Context(), cartID, itemID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartToResponse(cartID, c))
}

// GetCart handles GET /v1/carts/{cart}.
func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart")

	c, err := s.carts.Get(r.Context(), cartID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartToResponse(cartID, c))
}

// ClearCart handles DELETE /v1/carts/{cart}.
func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart")

	if err := s.carts.Clear(r.Context(), cartID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCartSummary handles GET /v1/carts/{cart}/summary?budget=.
func (s *Server) GetCartSummary(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart")

	var budget float64
	if raw := r.URL.Query().Get("budget"); raw != "" {
		var err error
		budget, err = strconv.ParseFloat(raw, 64)
		if err != nil || budget < 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "budget must be a non-negative number")
			return
		}
	}

	sum, err := s.carts.Summarize(r.Context(), cartID, budget)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	breakdown := make([]categoryShareResponse, len(sum.Breakdown))
	for i, share := range sum.Breakdown {
		breakdown[i] = categoryShareResponse{Category: share.Category, Amount: share.Amount}
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Totals:    totalsToResponse(sum.Totals),
		Breakdown: breakdown,
	})
}

// FitCart handles POST /v1/carts/{cart}/fit.
func (s *Server) FitCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart")

	var req fitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Budget < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "budget must not be negative")
		return
	}

	c, result, err := s.carts.Fit(r.Context(), cartID, req.Budget)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	removed := make([]lineItemResponse, len(result.Removed))
	for i, li := range result.Removed {
		removed[i] = lineItemToResponse(li)
	}

	writeJSON(w, http.StatusOK, fitResponse{
		Cart:     cartToResponse(cartID, c),
		Removed:  removed,
		Totals:   totalsToResponse(result.Totals),
		Feasible: result.Feasible,
	})
}

// TrimCart handles POST /v1/carts/{cart}/trim.
func (s *Server) TrimCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart")

	c, reduced, err := s.carts.Trim(r.Context(), cartID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trimResponse{
		Cart:    cartToResponse(cartID, c),
		Reduced: reduced,
	})
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domain.PeriodMonth
	if raw := r.URL.Query().Get("period"); raw == string(domain.PeriodDay) {
		period = domain.PeriodDay
	}

	report := s.usage.GetReport(r.Context(), period)

	writeJSON(w, http.StatusOK, usageResponse{
		Period:        string(report.Period),
		PeriodStartAt: time.UnixMilli(report.PeriodStartMS).UTC(),
		PeriodEndAt:   time.UnixMilli(report.PeriodEndMS).UTC(),
		Usage:         usageMetrics{Tokens: report.TokensUsed},
		Budget: budgetStatus{
			TokensLimit:     report.TokenLimit,
			TokensRemaining: report.Remaining,
			IsExhausted:     report.Exhausted,
			ResetsAt:        time.UnixMilli(report.ResetsAtMS).UTC(),
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Mapping helpers ---

func cartToResponse(id string, c domain.Cart) cartResponse {
	items := make([]lineItemResponse, len(c.Items))
	for i, li := range c.Items {
		items[i] = lineItemToResponse(li)
	}
	return cartResponse{ID: id, Items: items}
}

func lineItemToResponse(li domain.LineItem) lineItemResponse {
	return lineItemResponse{
		ProductID: li.ID,
		Name:      li.Name,
		UnitPrice: li.UnitPrice,
		Category:  li.Category,
		Quantity:  li.Quantity,
		LineTotal: li.LineTotal(),
	}
}

func totalsToResponse(t domain.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:  t.Subtotal,
		Tax:       t.Tax,
		Total:     t.Total,
		Remaining: t.Remaining,
	}
}

// --- Error handling ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoSearchCriteria,
		domain.ErrProductNotFound,
		domain.ErrLineItemNotFound,
		domain.ErrAssistantQuotaExceeded,
		domain.ErrCatalogUnavailable,
		domain.ErrAssistantUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
