package strategy

import (
	"math"
	"reflect"
	"testing"
	"time"

	"StockScreener/internal/model"
)

// filled returns n copies of v as a defined series.
func filled(n int, v float64) model.Series {
	s := make(model.Series, n)
	for i := range s {
		s[i] = model.Some(v)
	}
	return s
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// breakoutFrame: 30-day closing high of 100, SMA20 > SMA50, RSI 50 and volume
// above its 20-day average on the latest bar.
func breakoutFrame(lastClose float64) *Frame {
	n := 60
	f := &Frame{
		Close:    flat(n, 100),
		Volume:   flat(n, 1000),
		FastMA:   filled(n, 105),
		MidMA:    filled(n, 100),
		SlowMA:   filled(n, 95),
		RSI:      filled(n, 50),
		VolumeMA: filled(n, 1100),
	}
	f.Close[n-1] = lastClose
	f.Volume[n-1] = 2000
	return f
}

func TestMomentumBreakout_WithinBuffer(t *testing.T) {
	p := model.DefaultParams()
	ev := EvaluateFrame(MomentumBreakout, breakoutFrame(101), p)
	if !ev.Matched {
		t.Fatalf("expected match, failed conditions: %v (reason %q)", ev.Failed(), ev.Reason)
	}
	if len(ev.Conditions) != 4 {
		t.Errorf("expected 4 conditions, got %d", len(ev.Conditions))
	}
	for _, name := range []string{"SMA20>SMA50", "RSI40-60", "Volume>VOL20", "Breakout"} {
		if passed, found := ev.Condition(name); !found || !passed {
			t.Errorf("condition %q: passed=%v found=%v", name, passed, found)
		}
	}
}

func TestMomentumBreakout_Overextended(t *testing.T) {
	p := model.DefaultParams()
	ev := EvaluateFrame(MomentumBreakout, breakoutFrame(110), p)
	if ev.Matched {
		t.Fatal("expected no match 10% above the high with a 5% buffer")
	}
	if got := ev.Failed(); !reflect.DeepEqual(got, []string{"Breakout"}) {
		t.Errorf("expected only Breakout to fail, got %v", got)
	}
}

func TestMomentumBreakout_NoBreakout(t *testing.T) {
	ev := EvaluateFrame(MomentumBreakout, breakoutFrame(100), model.DefaultParams())
	if passed, _ := ev.Condition("Breakout"); passed {
		t.Error("closing at the high is not a breakout")
	}
}

func TestMomentumBreakout_ExcludesCurrentBar(t *testing.T) {
	// the current bar must not raise its own reference high
	f := breakoutFrame(103)
	f.Close[f.Last()-31] = 150 // outside the 30-bar window
	ev := EvaluateFrame(MomentumBreakout, f, model.DefaultParams())
	if passed, _ := ev.Condition("Breakout"); !passed {
		t.Errorf("expected breakout against the trailing 30-bar high, failed: %v", ev.Failed())
	}
}

func maFrame(fast, mid, slow float64) *Frame {
	n := 201
	return &Frame{
		Close:  flat(n, 120),
		Volume: flat(n, 1000),
		FastMA: filled(n, fast),
		MidMA:  filled(n, mid),
		SlowMA: filled(n, slow),
	}
}

func TestMACrossover(t *testing.T) {
	p := model.DefaultParams()
	if ev := EvaluateFrame(MACrossover, maFrame(110, 105, 100), p); !ev.Matched {
		t.Errorf("expected match for 110 > 105 > 100, got %+v", ev)
	}
	if ev := EvaluateFrame(MACrossover, maFrame(110, 100, 105), p); ev.Matched {
		t.Error("expected no match when SMA50 < SMA200")
	}
}

func TestMACrossover_UndefinedSlowMA(t *testing.T) {
	f := maFrame(110, 105, 100)
	f.SlowMA[f.Last()] = model.None()
	if ev := EvaluateFrame(MACrossover, f, model.DefaultParams()); ev.Matched {
		t.Error("undefined SMA200 must not match")
	}
}

func TestMissingColumnDoesNotMatch(t *testing.T) {
	f := maFrame(110, 105, 100)
	f.SlowMA = nil
	ev := EvaluateFrame(MACrossover, f, model.DefaultParams())
	if ev.Matched || ev.Skipped {
		t.Errorf("missing SMA200 column should evaluate to a plain false, got %+v", ev)
	}
}

func TestPullback(t *testing.T) {
	n := 60
	f := &Frame{
		Close:  flat(n, 102),
		FastMA: filled(n, 105),
		MidMA:  filled(n, 100),
		RSI:    filled(n, 45),
	}
	p := model.DefaultParams()
	if ev := EvaluateFrame(Pullback, f, p); !ev.Matched {
		t.Errorf("expected pullback match, failed %v", ev.Failed())
	}
	f.RSI[n-1] = model.Some(50)
	ev := EvaluateFrame(Pullback, f, p)
	if ev.Matched {
		t.Error("RSI of exactly 50 is not below 50")
	}
	if passed, _ := ev.Condition("Pullback"); !passed {
		t.Error("price condition should still hold")
	}
}

func TestRSIRange_Inclusive(t *testing.T) {
	p := model.DefaultParams()
	tests := []struct {
		rsi  float64
		want bool
	}{
		{39.99, false},
		{40, true},
		{50, true},
		{60, true},
		{60.01, false},
	}
	for _, tt := range tests {
		f := &Frame{Close: flat(20, 1), RSI: filled(20, tt.rsi)}
		if got := EvaluateFrame(RSIRange, f, p).Matched; got != tt.want {
			t.Errorf("RSI %.2f: got %v, want %v", tt.rsi, got, tt.want)
		}
	}
}

func TestMomentumCrossover(t *testing.T) {
	n := 60
	f := &Frame{
		Close:  flat(n, 110),
		FastMA: filled(n, 99),
		MidMA:  filled(n, 100),
	}
	// SMA20 moves above SMA50 three bars ago
	for i := n - 3; i < n; i++ {
		f.FastMA[i] = model.Some(105)
	}
	p := model.DefaultParams()
	if ev := EvaluateFrame(MomentumCrossover, f, p); !ev.Matched {
		t.Errorf("expected match, failed %v", ev.Failed())
	}
	p.CrossoverDays = 2
	if ev := EvaluateFrame(MomentumCrossover, f, p); ev.Matched {
		t.Error("crossover three bars ago is outside a two-bar window")
	}
}

func TestConsolidationBreakout_Direction(t *testing.T) {
	n := 60
	f := &Frame{
		Close:  flat(n, 100),
		FastMA: filled(n, 101),
		MidMA:  filled(n, 98),
	}
	f.Close[n-2] = 102
	f.Close[n-3] = 99
	p := model.DefaultParams()
	ev := EvaluateFrame(ConsolidationBreakout, f, p)
	if !ev.Matched {
		t.Errorf("expected tight range under SMA20 to match, failed %v", ev.Failed())
	}

	p.ConsolidationAboveMid = false
	ev = EvaluateFrame(ConsolidationBreakout, f, p)
	if ev.Matched {
		t.Error("SMA20 above SMA50 must fail the below-mid variant")
	}
	if _, found := ev.Condition("SMA20<SMA50"); !found {
		t.Errorf("expected below-mid condition name, got %+v", ev.Conditions)
	}

	p = model.DefaultParams()
	f.Close[n-4] = 80
	if ev := EvaluateFrame(ConsolidationBreakout, f, p); ev.Matched {
		t.Error("a 20% range is not a consolidation")
	}
}

func TestRecovery(t *testing.T) {
	n := 220
	f := &Frame{
		Close:  flat(n, 100),
		FastMA: filled(n, 96),
		MidMA:  filled(n, 94),
		SlowMA: filled(n, 110),
	}
	// downtrend stack ten bars ago
	f.FastMA[n-10] = model.Some(90)
	f.MidMA[n-10] = model.Some(95)
	p := model.DefaultParams()
	if ev := EvaluateFrame(Recovery, f, p); !ev.Matched {
		t.Errorf("expected recovery match, failed %v", ev.Failed())
	}

	// without a prior downtrend the pattern is just an uptrend under SMA200
	f.FastMA[n-10] = model.Some(96)
	f.MidMA[n-10] = model.Some(94)
	ev := EvaluateFrame(Recovery, f, p)
	if ev.Matched {
		t.Error("expected no match without a prior downtrend")
	}
	if got := ev.Failed(); !reflect.DeepEqual(got, []string{"PriorDowntrend"}) {
		t.Errorf("expected only PriorDowntrend to fail, got %v", got)
	}
}

func bars(n int, price func(i int) float64) *model.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &model.BarSeries{Ticker: "TEST", Interval: "1d"}
	for i := 0; i < n; i++ {
		c := price(i)
		s.Bars = append(s.Bars, model.OHLCV{
			Time: start.AddDate(0, 0, i), Open: c, High: c * 1.01, Low: c * 0.99, Close: c,
			Volume: 1e6 + float64(i%7)*1e4,
		})
	}
	return s
}

func TestEvaluate_InsufficientHistory(t *testing.T) {
	short := bars(10, func(i int) float64 { return 100 + float64(i) })
	p := model.DefaultParams()
	for _, k := range Kinds() {
		ev, snap := Evaluate(k, short, p)
		if ev.Matched {
			t.Errorf("%s: matched on 10 bars", k)
		}
		if !ev.Skipped {
			t.Errorf("%s: expected skipped evaluation, got %+v", k, ev)
		}
		if c, ok := snap.Close.Float(); !ok || c != 109 {
			t.Errorf("%s: snapshot close = %v,%v, want 109", k, c, ok)
		}
	}
}

func TestEvaluate_MinBars(t *testing.T) {
	p := model.DefaultParams()
	tests := []struct {
		kind Kind
		want int
	}{
		{MomentumBreakout, 51},
		{Pullback, 51},
		{MACrossover, 201},
		{RSIRange, 15},
		{MomentumCrossover, 51},
		{ConsolidationBreakout, 51},
		{Recovery, 201},
	}
	for _, tt := range tests {
		if got := MinBars(tt.kind, p); got != tt.want {
			t.Errorf("%s: MinBars = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestEvaluate_EmptyAndUnknown(t *testing.T) {
	if ev, _ := Evaluate(MomentumBreakout, nil, model.DefaultParams()); !ev.Skipped || ev.Matched {
		t.Errorf("nil series: %+v", ev)
	}
	long := bars(300, func(i int) float64 { return 100 })
	if ev, _ := Evaluate(Kind(99), long, model.DefaultParams()); !ev.Skipped {
		t.Errorf("unknown kind should be skipped, got %+v", ev)
	}
}

func TestEvaluate_NaNClose(t *testing.T) {
	s := bars(260, func(i int) float64 { return 100 + math.Sin(float64(i)/5) })
	s.Bars[len(s.Bars)-1].Close = math.NaN()
	for _, k := range Kinds() {
		if ev, _ := Evaluate(k, s, model.DefaultParams()); ev.Matched {
			t.Errorf("%s: NaN close must not match", k)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	s := bars(260, func(i int) float64 { return 100 + 10*math.Sin(float64(i)/9) + float64(i)/10 })
	p := model.DefaultParams()
	for _, k := range Kinds() {
		ev1, snap1 := Evaluate(k, s, p)
		ev2, snap2 := Evaluate(k, s, p)
		if !reflect.DeepEqual(ev1, ev2) || !reflect.DeepEqual(snap1, snap2) {
			t.Errorf("%s: repeated evaluation differs", k)
		}
		if ev1.Skipped {
			t.Errorf("%s: 260 bars should be enough, got %q", k, ev1.Reason)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"Momentum + Breakout", MomentumBreakout},
		{"momentum-breakout", MomentumBreakout},
		{"PULLBACK", Pullback},
		{"ma crossover", MACrossover},
		{"RSI Range", RSIRange},
		{"consolidation_breakout", ConsolidationBreakout},
		{"recovery", Recovery},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseKind("moonshot"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
