package cartwright

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := &engineConfig{
		taxRate:        defaultTaxRate,
		cartTTL:        defaultCartTTL,
		candidateLimit: defaultCandidateLimit,
		budgetAction:   BudgetWarn,
	}

	WithRedis([]string{"localhost:6379"}, "secret")(cfg)
	if len(cfg.addrs) != 1 || cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v, want [localhost:6379]", cfg.addrs)
	}
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	WithTaxRate(0.1)(cfg)
	if cfg.taxRate != 0.1 {
		t.Errorf("taxRate = %v, want 0.1", cfg.taxRate)
	}

	WithCartTTL(7 * 24 * time.Hour)(cfg)
	if cfg.cartTTL != 7*24*time.Hour {
		t.Errorf("cartTTL = %v, want 168h", cfg.cartTTL)
	}

	WithCandidateLimit(50)(cfg)
	if cfg.candidateLimit != 50 {
		t.Errorf("candidateLimit = %d, want 50", cfg.candidateLimit)
	}

	WithAssistant(AssistantOptions{APIKey: "sk-test", Model: "gpt-4o"})(cfg)
	if cfg.assistant.APIKey != "sk-test" {
		t.Errorf("assistant.APIKey = %q, want sk-test", cfg.assistant.APIKey)
	}
	if cfg.assistant.Model != "gpt-4o" {
		t.Errorf("assistant.Model = %q, want gpt-4o", cfg.assistant.Model)
	}

	WithTokenBudget(1000, 30000, BudgetReject)(cfg)
	if cfg.dailyTokenLimit != 1000 || cfg.monthlyTokenLimit != 30000 {
		t.Errorf("limits = %d/%d, want 1000/30000", cfg.dailyTokenLimit, cfg.monthlyTokenLimit)
	}
	if cfg.budgetAction != BudgetReject {
		t.Errorf("budgetAction = %q, want reject", cfg.budgetAction)
	}

	logger := zap.NewNop()
	WithLogger(logger)(cfg)
	if cfg.logger != logger {
		t.Error("logger not applied")
	}
}

func TestEngineOptions_InvalidValuesIgnored(t *testing.T) {
	cfg := &engineConfig{
		taxRate:        defaultTaxRate,
		cartTTL:        defaultCartTTL,
		candidateLimit: defaultCandidateLimit,
		logger:         zap.NewNop(),
	}

	WithTaxRate(-0.5)(cfg)
	if cfg.taxRate != defaultTaxRate {
		t.Errorf("taxRate = %v, want default %v", cfg.taxRate, defaultTaxRate)
	}

	WithCartTTL(0)(cfg)
	if cfg.cartTTL != defaultCartTTL {
		t.Errorf("cartTTL = %v, want default", cfg.cartTTL)
	}

	WithCandidateLimit(0)(cfg)
	if cfg.candidateLimit != defaultCandidateLimit {
		t.Errorf("candidateLimit = %d, want default", cfg.candidateLimit)
	}

	WithLogger(nil)(cfg)
	if cfg.logger == nil {
		t.Error("nil logger replaced the default")
	}
}

func TestWithTokenBudget_UnknownActionFallsBackToWarn(t *testing.T) {
	cfg := &engineConfig{}
	WithTokenBudget(100, 0, BudgetAction("explode"))(cfg)
	if cfg.budgetAction != BudgetWarn {
		t.Errorf("budgetAction = %q, want warn", cfg.budgetAction)
	}
}

func TestBuildAssistant_DisabledWithoutAPIKey(t *testing.T) {
	assistant, health := buildAssistant(AssistantOptions{}, nil, nil, zap.NewNop())
	if assistant != nil {
		t.Error("expected nil assistant without API key")
	}
	if health != nil {
		t.Error("expected nil health checker without API key")
	}
}
