package calculator

import (
	"math"

	"StockScreener/internal/model"
)

// SMA computes the simple moving average of values over the given window.
// Position i averages the window values ending at i; earlier positions, and
// windows touching a non-finite value, are undefined.
func SMA(values []float64, window int) model.Series {
	out := make(model.Series, len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		if avg, ok := mean(values[i-window+1 : i+1]); ok {
			out[i] = model.Some(avg)
		}
	}
	return out
}

// Closes extracts closing prices from bars.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes extracts traded volume from bars.
func Volumes(bars []model.OHLCV) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		sum += v
	}
	return sum / float64(len(values)), true
}
