package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockScreener/internal/cache"
	"StockScreener/internal/model"
)

// Fetch attempt outcomes passed to Retrier.Observe.
const (
	ResultOK     = "ok"
	ResultNoData = "no_data"
	ResultError  = "error"
)

// Retrier retries transient fetch failures a bounded number of times with a
// fixed delay between attempts.
type Retrier struct {
	Attempts int
	Delay    time.Duration
	// Observe, when set, is called with the outcome of every attempt.
	Observe func(result string)
}

// DefaultRetrier makes two attempts half a second apart.
func DefaultRetrier() Retrier {
	return Retrier{Attempts: 2, Delay: 500 * time.Millisecond}
}

// Fetch calls f until it succeeds, reports ErrNoData, the context ends or the
// attempts are used up. The last error is returned.
func (r Retrier) Fetch(ctx context.Context, f Fetcher, ticker, period, interval string) (*model.BarSeries, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		s, err := f.Fetch(ctx, ticker, period, interval)
		switch {
		case err == nil && !s.Empty():
			r.observe(ResultOK)
			return s, nil
		case err == nil:
			r.observe(ResultNoData)
			return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
		case errors.Is(err, ErrNoData):
			r.observe(ResultNoData)
			return nil, err
		}
		r.observe(ResultError)
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt < attempts {
			zap.S().Debugf("fetch %s attempt %d/%d failed: %v, retrying in %v", ticker, attempt, attempts, err, r.Delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.Delay):
			}
		}
	}
	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", ticker, attempts, lastErr)
}

func (r Retrier) observe(result string) {
	if r.Observe != nil {
		r.Observe(result)
	}
}

// CachedFetcher serves fresh cached series and stores everything it fetches.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   cache.Cache
	MaxAge  time.Duration
	Now     func() time.Time
}

// NewCachedFetcher wraps f with c. A nil cache disables caching.
func NewCachedFetcher(f Fetcher, c cache.Cache, maxAge time.Duration) *CachedFetcher {
	if c == nil {
		c = cache.NewNopCache()
	}
	return &CachedFetcher{Fetcher: f, Cache: c, MaxAge: maxAge, Now: time.Now}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() + "+cache" }

func (c *CachedFetcher) Fetch(ctx context.Context, ticker, period, interval string) (*model.BarSeries, error) {
	key := cache.Key(ticker, period, interval)

	s, err := c.Cache.Get(ctx, key)
	switch {
	case err == nil && !s.Empty() && cache.Fresh(s, c.MaxAge, c.Now()):
		return s, nil
	case err != nil && !errors.Is(err, cache.ErrMiss):
		zap.S().Warnf("cache get %s: %v, fetching", key, err)
	}

	s, err = c.Fetcher.Fetch(ctx, ticker, period, interval)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Put(ctx, key, s); err != nil {
		zap.S().Warnf("cache put %s: %v", key, err)
	}
	return s, nil
}
