package screener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"StockScreener/internal/collector"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
	"StockScreener/internal/universe"
)

// Skip reasons, also used as metric labels.
const (
	SkipNoData       = "no_data"
	SkipFetchError   = "fetch_error"
	SkipInsufficient = "insufficient_history"
)

// Screener runs one strategy over a universe of tickers, one ticker at a time.
type Screener struct {
	Fetcher  collector.Fetcher
	Universe universe.Source
	Retrier  collector.Retrier
	Period   string
	Interval string
	Metrics  *metrics.Metrics
	// OnProgress is called after each ticker with the count done so far.
	OnProgress func(done, total int, ticker string)
	Now        func() time.Time
}

// New creates a Screener with the default retry policy over daily bars.
func New(f collector.Fetcher, u universe.Source, period string) *Screener {
	return &Screener{
		Fetcher:  f,
		Universe: u,
		Retrier:  collector.DefaultRetrier(),
		Period:   period,
		Interval: "1d",
		Now:      time.Now,
	}
}

// Run screens every ticker of the universe. Only invalid parameters and an
// unavailable universe abort the pass; per-ticker failures are recorded in the
// report. A cancelled context returns the partial report with ctx.Err().
func (s *Screener) Run(ctx context.Context, kind strategy.Kind, p model.Params) (*model.Report, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if kind.Slug() == "" {
		return nil, fmt.Errorf("unknown strategy %d", int(kind))
	}
	tickers, err := s.Universe.Tickers(ctx)
	if err != nil {
		if errors.Is(err, universe.ErrEmptyUniverse) {
			return nil, err
		}
		return nil, fmt.Errorf("load universe: %w", err)
	}
	if len(tickers) == 0 {
		return nil, universe.ErrEmptyUniverse
	}

	now := s.now()
	report := &model.Report{
		RunID:     uuid.NewString(),
		Strategy:  kind.Slug(),
		Params:    p,
		Period:    s.Period,
		Interval:  s.interval(),
		Universe:  len(tickers),
		StartedAt: now,
	}
	retrier := s.Retrier
	if retrier.Observe == nil && s.Metrics != nil {
		retrier.Observe = s.Metrics.ObserveFetch
	}

	zap.S().Infof("scanning %d tickers for %s (period %s)", len(tickers), kind, s.Period)
	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = s.now()
			return report, err
		}

		series, err := retrier.Fetch(ctx, s.Fetcher, ticker, s.Period, s.interval())
		if err != nil {
			if ctx.Err() != nil {
				report.FinishedAt = s.now()
				return report, ctx.Err()
			}
			reason := SkipFetchError
			if errors.Is(err, collector.ErrNoData) {
				reason = SkipNoData
			}
			zap.S().Debugf("skip %s: %v", ticker, err)
			report.Skipped = append(report.Skipped, model.SkippedTicker{Ticker: ticker, Reason: err.Error()})
			s.Metrics.ObserveSkip(reason)
			s.progress(i+1, len(tickers), ticker)
			continue
		}

		ev, snap := strategy.Evaluate(kind, series, p)
		if ev.Skipped {
			zap.S().Debugf("%s not evaluated: %s", ticker, ev.Reason)
			s.Metrics.ObserveSkip(SkipInsufficient)
		}
		report.Rows = append(report.Rows, model.Row{Ticker: ticker, Evaluation: ev, Snapshot: snap})
		s.progress(i+1, len(tickers), ticker)
	}

	report.FinishedAt = s.now()
	matches := len(report.Matches())
	s.Metrics.ObservePass(kind.Slug(), len(report.Rows), matches, report.FinishedAt.Sub(report.StartedAt))
	zap.S().Infof("%s: %d matches out of %d evaluated, %d skipped in %v",
		kind, matches, len(report.Rows), len(report.Skipped), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report, nil
}

func (s *Screener) progress(done, total int, ticker string) {
	if s.OnProgress != nil {
		s.OnProgress(done, total, ticker)
	}
}

func (s *Screener) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Screener) interval() string {
	if s.Interval == "" {
		return "1d"
	}
	return s.Interval
}
