package usage

import (
	"context"
	"time"

	"github.com/quotient-labs/cartwright/internal/domain"
)

// Service handles usage reporting.
type Service struct {
	br BudgetReader
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br}
}

// GetReport builds a token usage report for the given period.
// Unknown periods fall back to the monthly window.
func (s *Service) GetReport(_ context.Context, period domain.UsagePeriod) domain.UsageReport {
	now := time.Now().UTC()

	var start, end time.Time
	var limit, used, remaining int64

	switch period {
	case domain.PeriodDay:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			remaining = s.br.RemainingDaily()
		}
	default:
		period = domain.PeriodMonth
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
		}
	}

	return domain.UsageReport{
		Period:        period,
		PeriodStartMS: start.UnixMilli(),
		PeriodEndMS:   end.UnixMilli(),
		TokensUsed:    used,
		TokenLimit:    limit,
		Remaining:     remaining,
		Exhausted:     limit > 0 && remaining <= 0,
		ResetsAtMS:    end.UnixMilli(),
	}
}
