package domain

// UsagePeriod selects the reporting window for assistant token usage.
type UsagePeriod string

const (
	// PeriodDay reports the current UTC day.
	PeriodDay UsagePeriod = "day"
	// PeriodMonth reports the current UTC month.
	PeriodMonth UsagePeriod = "month"
)

// UsageReport describes assistant token consumption against the
// configured budget for one period. Limit 0 means unlimited.
type UsageReport struct {
	Period        UsagePeriod
	PeriodStartMS int64
	PeriodEndMS   int64
	TokensUsed    int64
	TokenLimit    int64
	Remaining     int64
	Exhausted     bool
	ResetsAtMS    int64
}
