// Package exchange converts amounts between currencies so every activity
// log can be expressed in the profile currency.
package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateMissing is returned when the rate source has no rate for a pair.
var ErrRateMissing = errors.New("conversion rate missing in response")

// ConversionResult contains converted amount details.
type ConversionResult struct {
	Amount   decimal.Decimal
	Rate     decimal.Decimal
	RateDate time.Time
}

// Converter converts amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string) (ConversionResult, error)
}
