package calculator

import (
	"math"
	"testing"

	"StockScreener/internal/model"
)

func assertClose(t *testing.T, label string, got model.Value, want, tol float64) {
	t.Helper()
	v, ok := got.Float()
	if !ok {
		t.Errorf("%s: got undefined, want %.6f", label, want)
		return
	}
	if math.Abs(v-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f)", label, v, want, tol)
	}
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestSMA_ConstantSeries(t *testing.T) {
	s := SMA(constant(30, 42.5), 20)
	if len(s) != 30 {
		t.Fatalf("expected aligned series of 30, got %d", len(s))
	}
	for i := 0; i < 19; i++ {
		if s[i].Defined() {
			t.Errorf("position %d: expected undefined during warm-up", i)
		}
	}
	for i := 19; i < 30; i++ {
		assertClose(t, "SMA(20)", s[i], 42.5, 1e-9)
	}
}

func TestSMA_Correctness_Period3(t *testing.T) {
	// 100,102,104 -> 102; 102,104,103 -> 103; 104,103,105 -> 104
	s := SMA([]float64{100, 102, 104, 103, 105}, 3)
	want := []float64{0, 0, 102, 103, 104}
	for i := 2; i < len(want); i++ {
		assertClose(t, "SMA(3)", s[i], want[i], 1e-9)
	}
}

func TestSMA_NoLookAhead(t *testing.T) {
	base := []float64{1, 2, 3, 4, 5, 6}
	a := SMA(base, 3)
	b := SMA(append(append([]float64{}, base...), 1000), 3)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("position %d changed after appending a future value", i)
		}
	}
}

func TestSMA_EdgeCases(t *testing.T) {
	if s := SMA([]float64{1, 2, 3}, 0); s.Last().Defined() {
		t.Error("zero window must give undefined values")
	}
	if s := SMA([]float64{1, 2}, 5); s.Last().Defined() {
		t.Error("window longer than series must give undefined values")
	}
	s := SMA([]float64{1, math.NaN(), 3, 4, 5}, 2)
	if s[2].Defined() {
		t.Error("window touching NaN must be undefined")
	}
	assertClose(t, "SMA after NaN", s[3], 3.5, 1e-9)
}

func TestRSI_HandComputed(t *testing.T) {
	// window 2, alpha 0.5:
	// i=1 d=+1 -> gain 1, loss 0 (seed, warm-up)
	// i=2 d=-1 -> gain 0.5, loss 0.5 -> RSI 50
	// i=3 d=+1 -> gain 0.75, loss 0.25 -> RS 3 -> RSI 75
	s := RSI([]float64{1, 2, 1, 2}, 2)
	if s[0].Defined() || s[1].Defined() {
		t.Error("expected warm-up prefix undefined")
	}
	assertClose(t, "RSI i=2", s[2], 50, 1e-9)
	assertClose(t, "RSI i=3", s[3], 75, 1e-9)
}

func TestRSI_WarmUp(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
	}
	s := RSI(closes, DefaultRSIWindow)
	for i := 0; i < DefaultRSIWindow; i++ {
		if s[i].Defined() {
			t.Errorf("position %d: expected undefined before %d changes", i, DefaultRSIWindow)
		}
	}
	if !s[DefaultRSIWindow].Defined() {
		t.Errorf("position %d: expected defined", DefaultRSIWindow)
	}
}

func TestRSI_Monotonic(t *testing.T) {
	up := make([]float64, 60)
	down := make([]float64, 60)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 200 - float64(i)
	}
	assertClose(t, "rising RSI", RSI(up, 14).Last(), 100, 1e-9)
	assertClose(t, "falling RSI", RSI(down, 14).Last(), 0, 1e-9)
}

func TestRSI_ZeroLossIsHundred(t *testing.T) {
	// flat then rising: loss series identically zero
	closes := append(constant(10, 50), 51, 52, 53, 54, 55, 56)
	s := RSI(closes, 14)
	for i := 14; i < len(s); i++ {
		assertClose(t, "zero-loss RSI", s[i], 100, 0)
	}
	flat := RSI(constant(30, 10), 14)
	assertClose(t, "flat RSI", flat.Last(), 100, 0)
}

func TestRSI_Bounds(t *testing.T) {
	closes := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
		45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64}
	for i, v := range RSI(closes, 14) {
		if f, ok := v.Float(); ok && (f < 0 || f > 100) {
			t.Errorf("position %d: RSI %.4f out of [0,100]", i, f)
		}
	}
}

func TestHighestLowest(t *testing.T) {
	values := []float64{5, 9, 3, 7, 100}
	high, ok := Highest(values, 4, 4)
	if !ok || high != 9 {
		t.Errorf("Highest: got %.1f,%v want 9,true", high, ok)
	}
	low, ok := Lowest(values, 4, 2)
	if !ok || low != 3 {
		t.Errorf("Lowest: got %.1f,%v want 3,true", low, ok)
	}
	if _, ok := Highest(values, 4, 5); ok {
		t.Error("window larger than available history must not fit")
	}
}

func TestRangeFraction(t *testing.T) {
	values := []float64{99, 101, 100, 100, 0}
	// window [99,101,100,100]: (101-99)/100 = 0.02
	got, ok := RangeFraction(values, 4, 4)
	if !ok || math.Abs(got-0.02) > 1e-12 {
		t.Errorf("RangeFraction: got %.6f,%v want 0.02,true", got, ok)
	}
}

func TestCrossedAbove(t *testing.T) {
	a := model.Series{model.Some(1), model.Some(2), model.Some(4), model.Some(5)}
	b := model.Series{model.Some(3), model.Some(3), model.Some(3), model.Some(3)}
	if !CrossedAbove(a, b, 3, 2) {
		t.Error("expected crossover at index 2 within trailing 2 bars")
	}
	if CrossedAbove(a, b, 3, 1) {
		t.Error("no crossover on the latest bar alone")
	}
	undef := model.Series{model.None(), model.None(), model.Some(4), model.Some(5)}
	if CrossedAbove(undef, b, 3, 3) {
		t.Error("undefined values must not count as a crossover")
	}
}
