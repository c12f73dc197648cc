package calculator

import (
	"math"

	"StockScreener/internal/model"
)

// trailing returns the n values ending just before end.
func trailing(values []float64, end, n int) ([]float64, bool) {
	if n <= 0 || end > len(values) || end-n < 0 {
		return nil, false
	}
	return values[end-n : end], true
}

// Highest returns the maximum of the n values ending just before index end.
func Highest(values []float64, end, n int) (float64, bool) {
	window, ok := trailing(values, end, n)
	if !ok {
		return 0, false
	}
	high := math.Inf(-1)
	for _, v := range window {
		if math.IsNaN(v) {
			return 0, false
		}
		if v > high {
			high = v
		}
	}
	return high, true
}

// Lowest returns the minimum of the n values ending just before index end.
func Lowest(values []float64, end, n int) (float64, bool) {
	window, ok := trailing(values, end, n)
	if !ok {
		return 0, false
	}
	low := math.Inf(1)
	for _, v := range window {
		if math.IsNaN(v) {
			return 0, false
		}
		if v < low {
			low = v
		}
	}
	return low, true
}

// RangeFraction returns (max-min)/mean of the n values ending just before end.
func RangeFraction(values []float64, end, n int) (float64, bool) {
	high, ok := Highest(values, end, n)
	if !ok {
		return 0, false
	}
	low, _ := Lowest(values, end, n)
	window, _ := trailing(values, end, n)
	avg, ok := mean(window)
	if !ok || avg <= 0 {
		return 0, false
	}
	return (high - low) / avg, true
}

// CrossedAbove reports whether a crossed from at-or-below b to above b on any
// of the n bars ending at index last.
func CrossedAbove(a, b model.Series, last, n int) bool {
	for i := last; i > last-n && i >= 1; i-- {
		if a.At(i-1).LTE(b.At(i-1)) && a.At(i).GT(b.At(i)) {
			return true
		}
	}
	return false
}
