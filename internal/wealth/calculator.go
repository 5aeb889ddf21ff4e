// Package wealth projects the future value of recurring savings.
package wealth

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultAnnualRate is the assumed long-run market return.
var DefaultAnnualRate = decimal.RequireFromString("0.07")

// Horizons are the projection lengths in years.
var Horizons = []int{10, 20, 30}

// Frequency is how often a contribution is saved.
type Frequency string

// Supported contribution frequencies.
const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// PeriodsPerYear returns the number of contributions per year.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case Weekly:
		return 52
	case Monthly:
		return 12
	default:
		return 365
	}
}

// ParseFrequency parses a frequency name. Empty means daily.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return f, nil
	default:
		return "", fmt.Errorf("unknown frequency %q", s)
	}
}

// Projection is the compound value of a recurring contribution.
type Projection struct {
	Contribution  decimal.Decimal `json:"contribution"`
	Frequency     Frequency       `json:"frequency"`
	AnnualSaving  decimal.Decimal `json:"annual_saving"`
	Years10       decimal.Decimal `json:"years_10"`
	Years20       decimal.Decimal `json:"years_20"`
	Years30       decimal.Decimal `json:"years_30"`
	AnnualRatePct decimal.Decimal `json:"annual_rate_pct"`
}

// Calculator computes annuity future values at a fixed annual rate.
type Calculator struct {
	AnnualRate decimal.Decimal
}

// NewCalculator creates a calculator. A negative rate is rejected.
func NewCalculator(annualRate decimal.Decimal) (*Calculator, error) {
	if annualRate.IsNegative() {
		return nil, fmt.Errorf("annual rate must not be negative: %s", annualRate)
	}
	return &Calculator{AnnualRate: annualRate}, nil
}

// FutureValue returns FV = P((1+r)^n - 1)/r where P is the yearly total of
// contribution, rounded to cents. A zero rate degrades to P*n.
func (c *Calculator) FutureValue(contribution decimal.Decimal, freq Frequency, years int) decimal.Decimal {
	if years <= 0 {
		return decimal.Zero
	}

	annual := contribution.Mul(decimal.NewFromInt(int64(freq.PeriodsPerYear())))
	n := decimal.NewFromInt(int64(years))
	if c.AnnualRate.IsZero() {
		return annual.Mul(n).Round(2)
	}

	growth := decimal.NewFromInt(1).Add(c.AnnualRate).Pow(n).Sub(decimal.NewFromInt(1))
	return annual.Mul(growth).Div(c.AnnualRate).Round(2)
}

// Project returns the 10, 20 and 30 year values of a recurring contribution.
func (c *Calculator) Project(contribution decimal.Decimal, freq Frequency) Projection {
	return Projection{
		Contribution:  contribution.Round(2),
		Frequency:     freq,
		AnnualSaving:  contribution.Mul(decimal.NewFromInt(int64(freq.PeriodsPerYear()))).Round(2),
		Years10:       c.FutureValue(contribution, freq, Horizons[0]),
		Years20:       c.FutureValue(contribution, freq, Horizons[1]),
		Years30:       c.FutureValue(contribution, freq, Horizons[2]),
		AnnualRatePct: c.AnnualRate.Mul(decimal.NewFromInt(100)).Round(2),
	}
}
