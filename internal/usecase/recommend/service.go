package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/domain"
	"github.com/quotient-labs/cartwright/internal/metrics"
	"github.com/quotient-labs/cartwright/internal/usecase/query"
)

// maxSelections caps how many products a recommendation returns.
const maxSelections = 6

// noMatchSummary is returned when the catalog yields no candidates.
const noMatchSummary = "No products found matching your criteria. Try adjusting your budget or category."

// defaultSummary covers assistant responses that omit the summary field.
const defaultSummary = "Selected products based on your project requirements."

// Service turns a free-text intent into a product selection. Catalog
// errors are hard failures; assistant failures of any kind degrade to
// the cheapest-first fallback so recommendations stay available.
type Service struct {
	catalog        Catalog
	assistant      domain.Assistant
	candidateLimit int
	logger         *zap.Logger
}

// New creates a recommendation service. assistant may be nil when no
// provider is configured; every request then takes the fallback path.
func New(catalog Catalog, assistant domain.Assistant, candidateLimit int, logger *zap.Logger) *Service {
	return &Service{
		catalog:        catalog,
		assistant:      assistant,
		candidateLimit: candidateLimit,
		logger:         logger,
	}
}

// Recommend validates the intent, queries the catalog and asks the
// assistant to pick up to six products from the candidates.
func (s *Service) Recommend(ctx context.Context, intent domain.Intent) (domain.Selection, error) {
	filter, err := query.Build(intent, s.candidateLimit)
	if err != nil {
		return domain.Selection{}, err
	}

	candidates, err := s.catalog.Search(ctx, filter)
	if err != nil {
		return domain.Selection{}, fmt.Errorf("search catalog: %v: %w", err, domain.ErrCatalogUnavailable)
	}

	s.logger.Debug("Catalog candidates found",
		zap.Int("count", len(candidates)),
		zap.Strings("terms", filter.Terms),
		zap.Float64("ceiling", filter.PriceCeiling))

	if len(candidates) == 0 {
		return domain.Selection{
			Summary:  noMatchSummary,
			Products: []domain.SelectedProduct{},
		}, nil
	}

	if s.assistant == nil {
		metrics.SelectionFallbacksTotal.WithLabelValues("disabled").Inc()
		return fallback(candidates, "not configured"), nil
	}

	result, err := s.assistant.Complete(ctx, buildPrompt(intent, candidates))
	if err != nil {
		s.logger.Warn("Assistant call failed, using fallback", zap.Error(err))
		metrics.SelectionFallbacksTotal.WithLabelValues("call_failed").Inc()
		return fallback(candidates, err.Error()), nil
	}

	parsed, err := parseResponse(result.Text)
	if err != nil {
		s.logger.Warn("Assistant response unparseable, using fallback", zap.Error(err))
		metrics.SelectionFallbacksTotal.WithLabelValues("parse_failed").Inc()
		return fallback(candidates, err.Error()), nil
	}

	selected := mapPicks(parsed.Recommendations, candidates)
	if len(selected) == 0 {
		s.logger.Warn("Assistant picked no valid candidate IDs, using fallback",
			zap.Int("picks", len(parsed.Recommendations)))
		metrics.SelectionFallbacksTotal.WithLabelValues("no_valid_ids").Inc()
		return fallback(candidates, "no valid product IDs"), nil
	}

	summary := parsed.Summary
	if summary == "" {
		summary = defaultSummary
	}

	return domain.Selection{Summary: summary, Products: selected}, nil
}

// mapPicks resolves assistant picks against the candidate set,
// dropping unknown IDs and keeping the assistant's order.
func mapPicks(picks []assistantPick, candidates []domain.Product) []domain.SelectedProduct {
	byID := make(map[string]domain.Product, len(candidates))
	for _, p := range candidates {
		byID[normalizeID(p.ID)] = p
	}

	selected := make([]domain.SelectedProduct, 0, maxSelections)
	for _, pick := range picks {
		p, ok := byID[normalizeID(string(pick.ID))]
		if !ok {
			continue
		}
		selected = append(selected, domain.SelectedProduct{
			Product:   p,
			Reasoning: pick.Reasoning,
		})
		if len(selected) == maxSelections {
			break
		}
	}
	return selected
}

// fallback returns the cheapest candidates; the catalog already sorts
// by price ascending.
func fallback(candidates []domain.Product, reason string) domain.Selection {
	n := len(candidates)
	if n > maxSelections {
		n = maxSelections
	}
	selected := make([]domain.SelectedProduct, n)
	for i := 0; i < n; i++ {
		selected[i] = domain.SelectedProduct{Product: candidates[i]}
	}
	return domain.Selection{
		Summary:  fmt.Sprintf("AI temporarily unavailable (%s). Showing top matching products.", reason),
		Products: selected,
	}
}
