package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultBaseURL = "https://api.frankfurter.app"

var errNonPositiveRate = errors.New("conversion rate must be positive")

// FrankfurterClient fetches latest rates from the frankfurter.app API.
type FrankfurterClient struct {
	baseURL    string
	httpClient *http.Client
}

type latestRates struct {
	Base  string                 `json:"base"`
	Date  string                 `json:"date"`
	Rates map[string]json.Number `json:"rates"`
}

// NewFrankfurterClient creates a Frankfurter API client. Outgoing requests
// are traced with otelhttp.
func NewFrankfurterClient(baseURL string, timeout time.Duration) *FrankfurterClient {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &FrankfurterClient{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Convert converts amount using the latest published rate.
func (c *FrankfurterClient) Convert(
	ctx context.Context,
	amount decimal.Decimal,
	fromCurrency, toCurrency string,
) (ConversionResult, error) {
	from := normalizeCode(fromCurrency)
	to := normalizeCode(toCurrency)
	if from == "" || to == "" {
		return ConversionResult{}, errors.New("from and to currencies are required")
	}
	if !amount.IsPositive() {
		return ConversionResult{}, errors.New("amount must be positive")
	}
	if from == to {
		return ConversionResult{Amount: amount, Rate: decimal.NewFromInt(1), RateDate: time.Now().UTC()}, nil
	}

	rate, rateDate, err := c.latest(ctx, from, to)
	if err != nil {
		return ConversionResult{}, err
	}

	return ConversionResult{
		Amount:   amount.Mul(rate).Round(2),
		Rate:     rate,
		RateDate: rateDate,
	}, nil
}

func (c *FrankfurterClient) latest(ctx context.Context, from, to string) (decimal.Decimal, time.Time, error) {
	endpoint := fmt.Sprintf("%s/latest?from=%s&to=%s", c.baseURL, url.QueryEscape(from), url.QueryEscape(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to create conversion request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to request conversion rate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, time.Time{}, fmt.Errorf("exchange API returned status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var payload latestRates
	if err := dec.Decode(&payload); err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to decode conversion response: %w", err)
	}

	raw, ok := payload.Rates[to]
	if !ok {
		return decimal.Zero, time.Time{}, fmt.Errorf("%w: %s->%s", ErrRateMissing, from, to)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to parse conversion rate: %w", err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, time.Time{}, errNonPositiveRate
	}

	rateDate, err := time.Parse(time.DateOnly, payload.Date)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to parse conversion date: %w", err)
	}
	return rate, rateDate, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
