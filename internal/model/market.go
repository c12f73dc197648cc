package model

import (
	"fmt"
	"sort"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// BarSeries holds the bars of one ticker, ascending by time.
type BarSeries struct {
	Ticker    string    `json:"ticker"`
	Interval  string    `json:"interval"`
	Bars      []OHLCV   `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Len returns the number of bars.
func (s *BarSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Empty reports whether the series carries no bars.
func (s *BarSeries) Empty() bool { return s.Len() == 0 }

// Latest returns the most recent bar.
func (s *BarSeries) Latest() (OHLCV, bool) {
	if s.Empty() {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Normalize sorts bars by time and drops duplicate timestamps, keeping the last
// bar seen for a timestamp. Negative volume is rejected.
func (s *BarSeries) Normalize() error {
	if s.Empty() {
		return nil
	}
	for _, b := range s.Bars {
		if b.Volume < 0 {
			return fmt.Errorf("%s: negative volume at %s", s.Ticker, b.Time.Format(time.RFC3339))
		}
	}
	sort.SliceStable(s.Bars, func(i, j int) bool { return s.Bars[i].Time.Before(s.Bars[j].Time) })

	out := s.Bars[:0]
	for _, b := range s.Bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	s.Bars = out
	return nil
}
