package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"time"

	"StockScreener/internal/model"
)

// StaticFetcher serves in-memory bars for development and testing.
type StaticFetcher struct {
	// Bars holds the series returned per upper-cased ticker.
	Bars map[string][]model.OHLCV
	// Errors makes a ticker fail with the given error.
	Errors map[string]error
	// FailTimes makes a ticker fail transiently this many times before succeeding.
	FailTimes map[string]int
	// Synthesize generates a deterministic series of this many bars for
	// tickers missing from Bars. Zero reports ErrNoData instead.
	Synthesize int
	Now        func() time.Time

	mu    sync.Mutex
	calls map[string]int
}

func (m *StaticFetcher) Name() string { return "static" }

// Calls returns how many times ticker has been fetched.
func (m *StaticFetcher) Calls(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[strings.ToUpper(ticker)]
}

func (m *StaticFetcher) Fetch(ctx context.Context, ticker, _, interval string) (*model.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := strings.ToUpper(ticker)

	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[key]++
	n := m.calls[key]
	m.mu.Unlock()

	if err, ok := m.Errors[key]; ok {
		return nil, err
	}
	if n <= m.FailTimes[key] {
		return nil, fmt.Errorf("static %s: transient failure %d", key, n)
	}

	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	bars, ok := m.Bars[key]
	if !ok {
		if m.Synthesize <= 0 {
			return nil, fmt.Errorf("static %s: %w", key, ErrNoData)
		}
		bars = generateBars(key, m.Synthesize, now())
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("static %s: %w", key, ErrNoData)
	}

	s := &model.BarSeries{Ticker: key, Interval: interval, Bars: append([]model.OHLCV(nil), bars...), FetchedAt: now()}
	if err := s.Normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

// generateBars builds a gently trending, oscillating series seeded by the
// ticker so the same ticker always yields the same bars.
func generateBars(ticker string, count int, end time.Time) []model.OHLCV {
	h := fnv.New32a()
	h.Write([]byte(ticker))
	seed := h.Sum32()
	base := 20 + float64(seed%480)
	drift := (float64(seed%7) - 3) * 0.0005
	phase := float64(seed % 31)

	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := base * (1 + drift*float64(i)) * (1 + 0.03*math.Sin((float64(i)+phase)/9))
		bars[i] = model.OHLCV{
			Time:   day.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: float64(1000000 + (int(seed)+i*7919)%500000),
		}
	}
	return bars
}
