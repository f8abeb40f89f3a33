package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/config"
	"github.com/quotient-labs/cartwright/internal/db"
	dbRedis "github.com/quotient-labs/cartwright/internal/db/redis"
	"github.com/quotient-labs/cartwright/internal/domain"
	logpkg "github.com/quotient-labs/cartwright/internal/logger"
	"github.com/quotient-labs/cartwright/internal/metrics"
	budgetrepo "github.com/quotient-labs/cartwright/internal/repository/budget"
	cartrepo "github.com/quotient-labs/cartwright/internal/repository/cart"
	catalogrepo "github.com/quotient-labs/cartwright/internal/repository/catalog"
	"github.com/quotient-labs/cartwright/internal/repository/completion"
	chiTransport "github.com/quotient-labs/cartwright/internal/transport/chi"
	openaiAsst "github.com/quotient-labs/cartwright/internal/transport/openai"
	assistantuc "github.com/quotient-labs/cartwright/internal/usecase/assistant"
	cartuc "github.com/quotient-labs/cartwright/internal/usecase/cart"
	healthuc "github.com/quotient-labs/cartwright/internal/usecase/health"
	recommenduc "github.com/quotient-labs/cartwright/internal/usecase/recommend"
	usageuc "github.com/quotient-labs/cartwright/internal/usecase/usage"
	"github.com/quotient-labs/cartwright/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting cartwright API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register assistant metrics explicitly (no init())
	metrics.RegisterAssistantMetrics()

	catalogRepo := catalogrepo.New(store)
	if err := catalogRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure catalog index", zap.Error(err))
	}

	cartStore := cartrepo.New(store, time.Duration(cfg.Cart.TTLDays)*24*time.Hour)

	// Single BudgetTracker shared between the assistant chain and usage service.
	var budget *assistantuc.BudgetTracker
	budgetCfg := cfg.Assistant.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := assistantuc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = assistantuc.BudgetActionReject
		}
		budget = assistantuc.NewBudgetTracker(
			budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Connect persistence store and load current counters from DB.
		budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
		budget.WithStore(ctx, budgetStore)
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker assistantuc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	assistant, assistantHealth := buildAssistant(cfg.Assistant, store, budgetChecker, logger)
	if assistant == nil {
		logger.Warn("Assistant disabled, recommendations use cheapest-first fallback")
	} else {
		logger.Info("Assistant created", zap.String("model", cfg.Assistant.Model))
	}

	// Create use case services
	recommendSvc := recommenduc.New(catalogRepo, assistant, cfg.Catalog.CandidateLimit, logger)
	cartSvc := cartuc.New(cartStore, catalogRepo, cfg.Cart.TaxRate, logger)

	// Usage service reads from shared BudgetTracker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader)

	healthSvc := healthuc.New(store, assistantHealth)

	server := chiTransport.NewServer(recommendSvc, cartSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildAssistant assembles the decorator chain: OpenAI -> Cached -> Instrumented.
// An empty api_key disables the assistant entirely.
func buildAssistant(
	cfg config.AssistantConfig,
	store db.Store,
	budget assistantuc.BudgetChecker,
	logger *zap.Logger,
) (domain.Assistant, healthuc.AssistantChecker) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	base := openaiAsst.NewAssistant(&openaiAsst.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   cfg.MaxOutputTokens,
		Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:      logger,
	})

	var assistant domain.Assistant = base
	if cfg.CacheTTLMin > 0 {
		assistant = completion.New(
			base, store,
			time.Duration(cfg.CacheTTLMin)*time.Minute,
			metrics.CompletionCacheTotal, logger,
		)
	}

	assistant = assistantuc.NewInstrumentedAssistant(assistant, cfg.Model, budget, logger)

	return assistant, base
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
