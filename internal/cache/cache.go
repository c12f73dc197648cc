package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"StockScreener/internal/model"
)

// ErrMiss is returned by Get when no entry exists for a key.
var ErrMiss = errors.New("cache miss")

// Cache stores fetched bar series by key.
type Cache interface {
	Get(ctx context.Context, key string) (*model.BarSeries, error)
	Put(ctx context.Context, key string, s *model.BarSeries) error
	Close() error
}

// Key builds the cache key of one fetch.
func Key(ticker, period, interval string) string {
	return strings.ToUpper(ticker) + "_" + period + "_" + interval
}

// Fresh reports whether s was fetched within maxAge of now. A non-positive
// maxAge never treats anything as fresh.
func Fresh(s *model.BarSeries, maxAge time.Duration, now time.Time) bool {
	if s == nil || s.FetchedAt.IsZero() || maxAge <= 0 {
		return false
	}
	return now.Sub(s.FetchedAt) <= maxAge
}

// NopCache never stores anything.
type NopCache struct{}

func NewNopCache() *NopCache { return &NopCache{} }

func (NopCache) Get(context.Context, string) (*model.BarSeries, error) { return nil, ErrMiss }
func (NopCache) Put(context.Context, string, *model.BarSeries) error   { return nil }
func (NopCache) Close() error                                          { return nil }
