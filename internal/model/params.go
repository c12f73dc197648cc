package model

import "fmt"

// Params configures the strategies of one screening pass.
type Params struct {
	FastMA   int `json:"sma_fast" yaml:"sma_fast"`
	MidMA    int `json:"sma_mid" yaml:"sma_mid"`
	SlowMA   int `json:"sma_slow" yaml:"sma_slow"`
	RSI      int `json:"rsi_window" yaml:"rsi_window"`
	VolumeMA int `json:"volume_ma" yaml:"volume_ma"`

	RSILow         float64 `json:"rsi_low" yaml:"rsi_low"`
	RSIHigh        float64 `json:"rsi_high" yaml:"rsi_high"`
	PullbackRSIMax float64 `json:"pullback_rsi_max" yaml:"pullback_rsi_max"`

	LookbackDays   int     `json:"lookback_days" yaml:"lookback_days"`
	BreakoutBuffer float64 `json:"breakout_buffer" yaml:"breakout_buffer"`

	CrossoverDays int `json:"crossover_days" yaml:"crossover_days"`

	ConsolidationDays     int     `json:"consolidation_days" yaml:"consolidation_days"`
	ConsolidationMaxRange float64 `json:"consolidation_max_range" yaml:"consolidation_max_range"`
	// ConsolidationAboveMid selects SMA20 > SMA50 (true) or SMA20 < SMA50 for
	// the consolidation breakout.
	ConsolidationAboveMid bool `json:"consolidation_above_mid" yaml:"consolidation_above_mid"`

	RecoveryDays int `json:"recovery_days" yaml:"recovery_days"`
}

// DefaultParams returns the stock parameter set.
func DefaultParams() Params {
	return Params{
		FastMA:                20,
		MidMA:                 50,
		SlowMA:                200,
		RSI:                   14,
		VolumeMA:              20,
		RSILow:                40,
		RSIHigh:               60,
		PullbackRSIMax:        50,
		LookbackDays:          30,
		BreakoutBuffer:        0.05,
		CrossoverDays:         10,
		ConsolidationDays:     20,
		ConsolidationMaxRange: 0.08,
		ConsolidationAboveMid: true,
		RecoveryDays:          30,
	}
}

// Validate rejects parameter sets no strategy can evaluate.
func (p Params) Validate() error {
	windows := []struct {
		name string
		v    int
	}{
		{"sma_fast", p.FastMA},
		{"sma_mid", p.MidMA},
		{"sma_slow", p.SlowMA},
		{"rsi_window", p.RSI},
		{"volume_ma", p.VolumeMA},
		{"lookback_days", p.LookbackDays},
		{"crossover_days", p.CrossoverDays},
		{"consolidation_days", p.ConsolidationDays},
		{"recovery_days", p.RecoveryDays},
	}
	for _, w := range windows {
		if w.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", w.name, w.v)
		}
	}
	if p.RSILow > p.RSIHigh {
		return fmt.Errorf("rsi_low (%.1f) must not exceed rsi_high (%.1f)", p.RSILow, p.RSIHigh)
	}
	if p.RSILow < 0 || p.RSIHigh > 100 {
		return fmt.Errorf("rsi band [%.1f, %.1f] outside [0, 100]", p.RSILow, p.RSIHigh)
	}
	if p.BreakoutBuffer < 0 {
		return fmt.Errorf("breakout_buffer must not be negative, got %.4f", p.BreakoutBuffer)
	}
	if p.ConsolidationMaxRange <= 0 {
		return fmt.Errorf("consolidation_max_range must be positive, got %.4f", p.ConsolidationMaxRange)
	}
	return nil
}
