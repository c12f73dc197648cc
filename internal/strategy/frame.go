package strategy

import (
	"math"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// Frame is a bar series augmented with the indicator series the strategies read.
type Frame struct {
	Close    []float64
	Volume   []float64
	FastMA   model.Series
	MidMA    model.Series
	SlowMA   model.Series
	RSI      model.Series
	VolumeMA model.Series
}

// NewFrame computes all indicators for bars under the given parameters.
func NewFrame(bars []model.OHLCV, p model.Params) *Frame {
	closes := calculator.Closes(bars)
	volumes := calculator.Volumes(bars)
	return &Frame{
		Close:    closes,
		Volume:   volumes,
		FastMA:   calculator.SMA(closes, p.FastMA),
		MidMA:    calculator.SMA(closes, p.MidMA),
		SlowMA:   calculator.SMA(closes, p.SlowMA),
		RSI:      calculator.RSI(closes, p.RSI),
		VolumeMA: calculator.SMA(volumes, p.VolumeMA),
	}
}

// Len returns the number of bars.
func (f *Frame) Len() int { return len(f.Close) }

// Last returns the index of the latest bar.
func (f *Frame) Last() int { return len(f.Close) - 1 }

// CloseAt returns the close at i as an optional reading.
func (f *Frame) CloseAt(i int) model.Value { return at(f.Close, i) }

// VolumeAt returns the volume at i as an optional reading.
func (f *Frame) VolumeAt(i int) model.Value { return at(f.Volume, i) }

// Snapshot returns the latest-bar values for display.
func (f *Frame) Snapshot() model.Snapshot {
	last := f.Last()
	return model.Snapshot{
		Close:    f.CloseAt(last),
		RSI:      f.RSI.At(last),
		FastMA:   f.FastMA.At(last),
		MidMA:    f.MidMA.At(last),
		SlowMA:   f.SlowMA.At(last),
		Volume:   f.VolumeAt(last),
		VolumeMA: f.VolumeMA.At(last),
	}
}

func at(values []float64, i int) model.Value {
	if i < 0 || i >= len(values) {
		return model.None()
	}
	v := values[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return model.None()
	}
	return model.Some(v)
}
