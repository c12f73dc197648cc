package collector

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Warm pre-fetches tickers through f with at most workers requests in flight,
// typically so a CachedFetcher is populated before a sequential pass. Failures
// are logged and skipped; it returns how many tickers were fetched.
func Warm(ctx context.Context, f Fetcher, tickers []string, period, interval string, workers int) (int, error) {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var ok atomic.Int64
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			break
		}
		ticker := ticker
		g.Go(func() error {
			if _, err := f.Fetch(ctx, ticker, period, interval); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				zap.S().Debugf("warm %s: %v", ticker, err)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(ok.Load()), err
}
