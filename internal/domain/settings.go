package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Settings configures a single reconciliation run. Supplied once per run and
// immutable while the run executes.
type Settings struct {
	// Threshold is the minimum overall score for a match to commit, in [0,1].
	Threshold float64 `json:"threshold"`
	// Tolerance is the absolute amount difference allowed by the amount gate,
	// in currency units.
	Tolerance decimal.Decimal `json:"tolerance"`
	// AllowVariance bypasses the amount-tolerance gate entirely.
	AllowVariance bool `json:"allow_variance"`
	// Grouping enables the many-to-one pair fallback over residual records.
	Grouping bool `json:"grouping"`
	// DateWindow is the day span over which the date score decays to zero.
	DateWindow int `json:"date_window"`
	// UseCustomer enables the customer-name similarity component.
	UseCustomer bool `json:"use_customer"`
}

// DefaultSettings returns the engine defaults: threshold 0.75, tolerance 0.01,
// variance gate enforced, grouping off, 7-day window, customer scoring on.
func DefaultSettings() Settings {
	return Settings{
		Threshold:     0.75,
		Tolerance:     decimal.NewFromFloat(0.01),
		AllowVariance: false,
		Grouping:      false,
		DateWindow:    7,
		UseCustomer:   true,
	}
}

// Validate checks the settings ranges.
func (s Settings) Validate() error {
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("threshold %.2f out of range [0,1]", s.Threshold)
	}
	if s.Tolerance.IsNegative() {
		return fmt.Errorf("tolerance %s must not be negative", s.Tolerance)
	}
	if s.DateWindow < 0 {
		return fmt.Errorf("date window %d must not be negative", s.DateWindow)
	}
	return nil
}
