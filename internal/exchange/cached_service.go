package exchange

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const maxCleanupInterval = 5 * time.Minute

type cachedRate struct {
	rate      decimal.Decimal
	rateDate  time.Time
	expiresAt time.Time
}

// CachedService wraps a Converter with an in-memory TTL cache of rates keyed
// by "FROM->TO". Concurrent misses for the same pair share one upstream call.
type CachedService struct {
	inner Converter
	ttl   time.Duration
	now   func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	rates       map[string]cachedRate
	lastCleanup time.Time
}

// NewCachedService returns a converter that caches rates for ttl
// (12h when ttl is not positive).
func NewCachedService(inner Converter, ttl time.Duration) *CachedService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &CachedService{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		rates: make(map[string]cachedRate),
	}
}

// Convert returns the converted amount, using a cached rate when one is fresh.
func (s *CachedService) Convert(
	ctx context.Context,
	amount decimal.Decimal,
	fromCurrency, toCurrency string,
) (ConversionResult, error) {
	if s.inner == nil {
		return ConversionResult{}, errors.New("inner exchange service is required")
	}

	key := normalizeCode(fromCurrency) + "->" + normalizeCode(toCurrency)

	s.mu.RLock()
	entry, ok := s.rates[key]
	s.mu.RUnlock()
	if ok && s.now().Before(entry.expiresAt) {
		return entry.apply(amount), nil
	}

	// The refresh is detached from the first caller's cancellation so a
	// short deadline cannot fail the other waiters.
	ch := s.group.DoChan(key, func() (any, error) {
		res, err := s.inner.Convert(context.WithoutCancel(ctx), amount, fromCurrency, toCurrency)
		if err != nil {
			return nil, err
		}
		if !res.Rate.IsPositive() {
			return nil, errNonPositiveRate
		}

		fetched := s.now()
		fresh := cachedRate{rate: res.Rate, rateDate: res.RateDate, expiresAt: fetched.Add(s.ttl)}
		s.mu.Lock()
		s.rates[key] = fresh
		s.cleanupExpiredLocked(fetched)
		s.mu.Unlock()
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		return ConversionResult{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return ConversionResult{}, r.Err
		}
		return r.Val.(cachedRate).apply(amount), nil
	}
}

func (s *CachedService) cleanupExpiredLocked(now time.Time) {
	interval := min(s.ttl, maxCleanupInterval)
	if !s.lastCleanup.IsZero() && now.Sub(s.lastCleanup) < interval {
		return
	}
	for pair, entry := range s.rates {
		if !now.Before(entry.expiresAt) {
			delete(s.rates, pair)
		}
	}
	s.lastCleanup = now
}

func (c cachedRate) apply(amount decimal.Decimal) ConversionResult {
	return ConversionResult{
		Amount:   amount.Mul(c.rate).Round(2),
		Rate:     c.rate,
		RateDate: c.rateDate,
	}
}
