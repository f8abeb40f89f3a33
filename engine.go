// Package cartwright is the embedded engine: budget-aware product
// recommendations plus cart building and fitting over a Redis-backed catalog.
package cartwright

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/db"
	dbRedis "github.com/quotient-labs/cartwright/internal/db/redis"
	"github.com/quotient-labs/cartwright/internal/domain"
	"github.com/quotient-labs/cartwright/internal/metrics"
	budgetrepo "github.com/quotient-labs/cartwright/internal/repository/budget"
	cartrepo "github.com/quotient-labs/cartwright/internal/repository/cart"
	catalogrepo "github.com/quotient-labs/cartwright/internal/repository/catalog"
	"github.com/quotient-labs/cartwright/internal/repository/completion"
	openaiAsst "github.com/quotient-labs/cartwright/internal/transport/openai"
	assistantuc "github.com/quotient-labs/cartwright/internal/usecase/assistant"
	cartuc "github.com/quotient-labs/cartwright/internal/usecase/cart"
	healthuc "github.com/quotient-labs/cartwright/internal/usecase/health"
	recommenduc "github.com/quotient-labs/cartwright/internal/usecase/recommend"
	usageuc "github.com/quotient-labs/cartwright/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultTaxRate          = 0.08
	defaultCartTTL          = 30 * 24 * time.Hour
	defaultCandidateLimit   = 30
)

// Engine is the embedded cartwright entry point.
type Engine struct {
	store        db.Store
	catalog      *catalogrepo.Repo
	recommendSvc *recommenduc.Service
	cartSvc      *cartuc.Service
	usageSvc     *usageuc.Service
	healthSvc    *healthuc.Service
	logger       *zap.Logger
}

// New creates an Engine, connects to the database and prepares the
// catalog search index.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		taxRate:        defaultTaxRate,
		cartTTL:        defaultCartTTL,
		candidateLimit: defaultCandidateLimit,
		budgetAction:   BudgetWarn,
		logger:         zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("cartwright: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("cartwright: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("cartwright: database not ready: %w", err)
	}

	e, err := wireEngine(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return e, nil
}

func wireEngine(store db.Store, cfg *engineConfig) (*Engine, error) {
	ctx := context.Background()
	logger := cfg.logger

	catalog := catalogrepo.New(store)
	if err := catalog.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("cartwright: ensure catalog index: %w", err)
	}

	cartStore := cartrepo.New(store, cfg.cartTTL)

	var budget *assistantuc.BudgetTracker
	if cfg.dailyTokenLimit > 0 || cfg.monthlyTokenLimit > 0 {
		action := assistantuc.BudgetActionWarn
		if cfg.budgetAction == BudgetReject {
			action = assistantuc.BudgetActionReject
		}
		budget = assistantuc.NewBudgetTracker(
			cfg.dailyTokenLimit, cfg.monthlyTokenLimit, action, logger,
		)
		budget.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker assistantuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	assistant, assistantHealth := buildAssistant(cfg.assistant, store, budgetChecker, logger)

	return &Engine{
		store:        store,
		catalog:      catalog,
		recommendSvc: recommenduc.New(catalog, assistant, cfg.candidateLimit, logger),
		cartSvc:      cartuc.New(cartStore, catalog, cfg.taxRate, logger),
		usageSvc:     usageuc.New(budgetReader),
		healthSvc:    healthuc.New(store, assistantHealth),
		logger:       logger,
	}, nil
}

// buildAssistant assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildAssistant(
	opts AssistantOptions,
	store db.Store,
	budget assistantuc.BudgetChecker,
	logger *zap.Logger,
) (domain.Assistant, healthuc.AssistantChecker) {
	if opts.APIKey == "" {
		return nil, nil
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}

	metrics.RegisterAssistantMetrics()

	base := openaiAsst.NewAssistant(&openaiAsst.Config{
		APIKey:      opts.APIKey,
		BaseURL:     opts.BaseURL,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxOutputTokens,
		Timeout:     opts.Timeout,
		Logger:      logger,
	})

	var assistant domain.Assistant = base
	if opts.CacheTTL > 0 {
		assistant = completion.New(base, store, opts.CacheTTL, metrics.CompletionCacheTotal, logger)
	}
	assistant = assistantuc.NewInstrumentedAssistant(assistant, opts.Model, budget, logger)

	return assistant, base
}

// Close releases all resources.
func (e *Engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

// Ping checks database connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureCatalogIndex creates the catalog search index if it does not exist.
// New already does this; the method exists for recovery after FLUSHALL.
func (e *Engine) EnsureCatalogIndex(ctx context.Context) error {
	return e.catalog.EnsureIndex(ctx)
}

// UpsertProduct writes one product. Reports whether it was newly created.
func (e *Engine) UpsertProduct(ctx context.Context, p *Product) (bool, error) {
	return e.catalog.Upsert(ctx, p)
}

// UpsertProducts writes a batch of products.
func (e *Engine) UpsertProducts(ctx context.Context, products []Product) error {
	return e.catalog.UpsertMulti(ctx, products)
}

// Product returns one catalog entry, or ErrProductNotFound.
func (e *Engine) Product(ctx context.Context, id string) (Product, error) {
	return e.catalog.Get(ctx, id)
}

// DeleteProduct removes a product from the catalog.
func (e *Engine) DeleteProduct(ctx context.Context, id string) error {
	return e.catalog.Delete(ctx, id)
}

// ProductCount returns the number of indexed products.
func (e *Engine) ProductCount(ctx context.Context) (int, error) {
	return e.catalog.Count(ctx)
}

// Recommend returns up to six products matching the intent, within budget
// when one is given. Returns ErrNoSearchCriteria for an empty intent.
func (e *Engine) Recommend(ctx context.Context, intent Intent) (Selection, error) {
	return e.recommendSvc.Recommend(ctx, intent)
}

// AddToCart adds qty units of a catalog product to the cart, merging with
// an existing line for the same product.
func (e *Engine) AddToCart(ctx context.Context, cartID, productID string, qty int) (Cart, error) {
	return e.cartSvc.AddProduct(ctx, cartID, productID, qty)
}

// SetQuantity replaces a line item's quantity (clamped to at least 1).
func (e *Engine) SetQuantity(ctx context.Context, cartID, itemID string, qty int) (Cart, error) {
	return e.cartSvc.SetQuantity(ctx, cartID, itemID, qty)
}

// RemoveFromCart deletes one line item.
func (e *Engine) RemoveFromCart(ctx context.Context, cartID, itemID string) (Cart, error) {
	return e.cartSvc.RemoveItem(ctx, cartID, itemID)
}

// Cart returns the current cart; a missing cart is an empty one.
func (e *Engine) Cart(ctx context.Context, cartID string) (Cart, error) {
	return e.cartSvc.Get(ctx, cartID)
}

// Summary returns the cart's totals against the given budget plus the
// per-category breakdown.
func (e *Engine) Summary(ctx context.Context, cartID string, budget float64) (CartSummary, error) {
	s, err := e.cartSvc.Summarize(ctx, cartID, budget)
	if err != nil {
		return CartSummary{}, err
	}
	return CartSummary{Totals: s.Totals, Breakdown: s.Breakdown}, nil
}

// Fit removes the most expensive lines until the cart fits the budget,
// persisting the reduced cart.
func (e *Engine) Fit(ctx context.Context, cartID string, budget float64) (Cart, FitResult, error) {
	return e.cartSvc.Fit(ctx, cartID, budget)
}

// Trim reduces every line's quantity by roughly 30 percent (floor, min 1)
// and reports how many lines changed.
func (e *Engine) Trim(ctx context.Context, cartID string) (Cart, int, error) {
	return e.cartSvc.Trim(ctx, cartID)
}

// ClearCart deletes the cart entirely.
func (e *Engine) ClearCart(ctx context.Context, cartID string) error {
	return e.cartSvc.Clear(ctx, cartID)
}

// Usage reports assistant token consumption for the given period.
// Without a configured token budget all limits read as unlimited.
func (e *Engine) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	return e.usageSvc.GetReport(ctx, period)
}

// Health checks database and assistant connectivity.
func (e *Engine) Health(ctx context.Context) HealthReport {
	r := e.healthSvc.Check(ctx)
	checks := make(map[string]string, len(r.Checks))
	for name, result := range r.Checks {
		checks[name] = string(result)
	}
	return HealthReport{Status: string(r.Status), Checks: checks}
}
