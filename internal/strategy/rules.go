package strategy

import (
	"fmt"
	"strconv"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// rule is the evaluation function of one Kind plus the history it reads.
type rule struct {
	// windows returns the indicator windows the rule reads.
	windows func(p model.Params) []int
	// lookback returns the trailing bars the rule scans besides the current one.
	lookback func(p model.Params) int
	check    func(f *Frame, p model.Params) []model.Condition
}

var rules = map[Kind]rule{
	MomentumBreakout: {
		windows:  func(p model.Params) []int { return []int{p.FastMA, p.MidMA, p.RSI, p.VolumeMA} },
		lookback: func(p model.Params) int { return p.LookbackDays },
		check:    checkMomentumBreakout,
	},
	Pullback: {
		windows:  func(p model.Params) []int { return []int{p.FastMA, p.MidMA, p.RSI} },
		lookback: noLookback,
		check:    checkPullback,
	},
	MACrossover: {
		windows:  func(p model.Params) []int { return []int{p.FastMA, p.MidMA, p.SlowMA} },
		lookback: noLookback,
		check:    checkMACrossover,
	},
	RSIRange: {
		windows:  func(p model.Params) []int { return []int{p.RSI} },
		lookback: noLookback,
		check:    checkRSIRange,
	},
	MomentumCrossover: {
		windows:  func(p model.Params) []int { return []int{p.FastMA, p.MidMA} },
		lookback: func(p model.Params) int { return p.CrossoverDays },
		check:    checkMomentumCrossover,
	},
	ConsolidationBreakout: {
		windows:  func(p model.Params) []int { return []int{p.FastMA, p.MidMA} },
		lookback: func(p model.Params) int { return p.ConsolidationDays },
		check:    checkConsolidationBreakout,
	},
	Recovery: {
		windows:  func(p model.Params) []int { return []int{p.FastMA, p.MidMA, p.SlowMA} },
		lookback: func(p model.Params) int { return p.RecoveryDays },
		check:    checkRecovery,
	},
}

func noLookback(model.Params) int { return 0 }

// MinBars returns the bars a kind needs: its longest window or lookback, plus one.
func MinBars(kind Kind, p model.Params) int {
	r, ok := rules[kind]
	if !ok {
		return 0
	}
	longest := r.lookback(p)
	for _, w := range r.windows(p) {
		if w > longest {
			longest = w
		}
	}
	return longest + 1
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func smaAbove(a, b int) string { return fmt.Sprintf("SMA%d>SMA%d", a, b) }

func rsiBand(p model.Params) string { return fmt.Sprintf("RSI%s-%s", num(p.RSILow), num(p.RSIHigh)) }

// checkMomentumBreakout: trend up, RSI mid-band, volume expanding and a fresh
// close above the trailing high that is not yet overextended.
func checkMomentumBreakout(f *Frame, p model.Params) []model.Condition {
	last := f.Last()
	closeV := f.CloseAt(last)

	breakout := false
	if high, ok := calculator.Highest(f.Close, last, p.LookbackDays); ok {
		c, defined := closeV.Float()
		breakout = defined && c > high && c <= high*(1+p.BreakoutBuffer)
	}

	return []model.Condition{
		{Name: smaAbove(p.FastMA, p.MidMA), Passed: f.FastMA.At(last).GT(f.MidMA.At(last))},
		{Name: rsiBand(p), Passed: f.RSI.At(last).Between(p.RSILow, p.RSIHigh)},
		{Name: fmt.Sprintf("Volume>VOL%d", p.VolumeMA), Passed: f.VolumeAt(last).GT(f.VolumeMA.At(last))},
		{Name: "Breakout", Passed: breakout},
	}
}

func checkPullback(f *Frame, p model.Params) []model.Condition {
	last := f.Last()
	closeV := f.CloseAt(last)
	return []model.Condition{
		{Name: "Pullback", Passed: closeV.LT(f.FastMA.At(last)) && closeV.GT(f.MidMA.At(last))},
		{Name: "RSI<" + num(p.PullbackRSIMax), Passed: f.RSI.At(last).LT(model.Some(p.PullbackRSIMax))},
	}
}

func checkMACrossover(f *Frame, _ model.Params) []model.Condition {
	last := f.Last()
	fast, mid, slow := f.FastMA.At(last), f.MidMA.At(last), f.SlowMA.At(last)
	return []model.Condition{
		{Name: "MA Crossover", Passed: fast.GT(mid) && mid.GT(slow)},
	}
}

func checkRSIRange(f *Frame, p model.Params) []model.Condition {
	return []model.Condition{
		{Name: rsiBand(p), Passed: f.RSI.At(f.Last()).Between(p.RSILow, p.RSIHigh)},
	}
}

func checkMomentumCrossover(f *Frame, p model.Params) []model.Condition {
	last := f.Last()
	closeV, fast, mid := f.CloseAt(last), f.FastMA.At(last), f.MidMA.At(last)
	return []model.Condition{
		{Name: fmt.Sprintf("Close>SMA%d>SMA%d", p.FastMA, p.MidMA), Passed: closeV.GT(fast) && fast.GT(mid)},
		{Name: "Crossover", Passed: calculator.CrossedAbove(f.FastMA, f.MidMA, last, p.CrossoverDays)},
	}
}

// checkConsolidationBreakout looks for a tight trailing range while price sits
// under the fast average.
func checkConsolidationBreakout(f *Frame, p model.Params) []model.Condition {
	last := f.Last()
	closeV, fast, mid := f.CloseAt(last), f.FastMA.At(last), f.MidMA.At(last)

	trend := model.Condition{Name: smaAbove(p.FastMA, p.MidMA), Passed: fast.GT(mid)}
	if !p.ConsolidationAboveMid {
		trend = model.Condition{Name: fmt.Sprintf("SMA%d<SMA%d", p.FastMA, p.MidMA), Passed: fast.LT(mid)}
	}

	tight := false
	if rf, ok := calculator.RangeFraction(f.Close, last+1, p.ConsolidationDays); ok {
		tight = rf < p.ConsolidationMaxRange
	}

	return []model.Condition{
		{Name: fmt.Sprintf("Close<SMA%d", p.FastMA), Passed: closeV.LT(fast)},
		trend,
		{Name: "Consolidation", Passed: tight},
	}
}

// checkRecovery: a full downtrend stack on some recent bar, now price and the
// short averages have turned up while the long average still sits above.
func checkRecovery(f *Frame, p model.Params) []model.Condition {
	last := f.Last()
	prior := false
	for i := last - 1; i >= last-p.RecoveryDays && i >= 0; i-- {
		fast, mid, slow := f.FastMA.At(i), f.MidMA.At(i), f.SlowMA.At(i)
		if fast.LT(mid) && mid.LT(slow) {
			prior = true
			break
		}
	}

	closeV, fast, mid, slow := f.CloseAt(last), f.FastMA.At(last), f.MidMA.At(last), f.SlowMA.At(last)
	return []model.Condition{
		{Name: "PriorDowntrend", Passed: prior},
		{Name: fmt.Sprintf("Close>SMA%d>SMA%d", p.FastMA, p.MidMA), Passed: closeV.GT(fast) && fast.GT(mid)},
		{Name: fmt.Sprintf("SMA%d<SMA%d", p.MidMA, p.SlowMA), Passed: mid.LT(slow)},
	}
}
