package calculator

import (
	"math"

	"StockScreener/internal/model"
)

// DefaultRSIWindow is the conventional RSI lookback.
const DefaultRSIWindow = 14

// RSI computes the Wilder-smoothed relative strength index of closes.
//
// Gains and losses are smoothed independently with a non-adjusted exponential
// average, alpha = 1/window, seeded with the first price change. A reading is
// defined once window price changes have been observed. When the average loss
// is zero the RSI is 100.
func RSI(closes []float64, window int) model.Series {
	out := make(model.Series, len(closes))
	if window <= 0 || len(closes) < 2 {
		return out
	}
	alpha := 1.0 / float64(window)

	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = (1-alpha)*avgGain + alpha*gain
			avgLoss = (1-alpha)*avgLoss + alpha*loss
		}

		if i < window {
			continue
		}
		if v := rsiFromAverages(avgGain, avgLoss); !math.IsNaN(v) {
			out[i] = model.Some(v)
		}
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return math.NaN()
	}
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
