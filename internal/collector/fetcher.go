package collector

import (
	"context"
	"errors"

	"StockScreener/internal/model"
)

// ErrNoData reports that the source has no bars for a ticker. It is not
// retried; every other fetch error is treated as transient.
var ErrNoData = errors.New("no data")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// Fetch returns the bars of ticker covering period (e.g. "240d", "2y")
	// at the given interval (e.g. "1d", "1wk"), ascending by time.
	Fetch(ctx context.Context, ticker, period, interval string) (*model.BarSeries, error)
	Name() string
}
