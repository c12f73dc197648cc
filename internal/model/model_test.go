package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestValue_Comparisons(t *testing.T) {
	one, two, none := Some(1), Some(2), None()
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"1 < 2", one.LT(two), true},
		{"2 > 1", two.GT(one), true},
		{"1 >= 1", one.GTE(one), true},
		{"1 <= 1", one.LTE(one), true},
		{"none > 1", none.GT(one), false},
		{"1 > none", one.GT(none), false},
		{"none < 1", none.LT(one), false},
		{"none >= none", none.GTE(none), false},
		{"none <= 1", none.LTE(one), false},
		{"1 in [1,2]", one.Between(1, 2), true},
		{"2 in [0,1]", two.Between(0, 1), false},
		{"none in band", none.Between(math.Inf(-1), math.Inf(1)), false},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if none.Or(7) != 7 || two.Or(7) != 2 {
		t.Error("Or fallback")
	}
}

func TestValue_JSON(t *testing.T) {
	b, err := json.Marshal(Snapshot{Close: Some(12.5)})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"close":12.5,"rsi":null,"fast_ma":null,"mid_ma":null,"slow_ma":null,"volume":null,"volume_ma":null}`
	if string(b) != want {
		t.Errorf("json = %s", b)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatal(err)
	}
	if v, ok := s.Close.Float(); !ok || v != 12.5 {
		t.Errorf("close = %v, %v", v, ok)
	}
	if s.RSI.Defined() {
		t.Error("null decoded as defined")
	}
}

func TestSeries_At(t *testing.T) {
	s := Series{None(), Some(3)}
	if s.At(-1).Defined() || s.At(2).Defined() || s.At(0).Defined() {
		t.Error("out of range or warm-up reading defined")
	}
	if v, _ := s.Last().Float(); v != 3 {
		t.Errorf("Last = %v", v)
	}
	var empty Series
	if empty.Last().Defined() {
		t.Error("empty series has a last reading")
	}
}

func TestBarSeries_Normalize(t *testing.T) {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := &BarSeries{Ticker: "AAPL", Bars: []OHLCV{
		{Time: d.AddDate(0, 0, 2), Close: 3},
		{Time: d, Close: 1},
		{Time: d.AddDate(0, 0, 1), Close: 2},
		{Time: d, Close: 1.5},
	}}
	if err := s.Normalize(); err != nil {
		t.Fatal(err)
	}
	want := []float64{1.5, 2, 3}
	if s.Len() != len(want) {
		t.Fatalf("len = %d, want %d", s.Len(), len(want))
	}
	for i, c := range want {
		if s.Bars[i].Close != c {
			t.Errorf("bar %d close = %v, want %v", i, s.Bars[i].Close, c)
		}
	}

	bad := &BarSeries{Ticker: "X", Bars: []OHLCV{{Time: d, Volume: -1}}}
	if err := bad.Normalize(); err == nil {
		t.Error("negative volume accepted")
	}
}

func TestBarSeries_NilSafe(t *testing.T) {
	var s *BarSeries
	if !s.Empty() || s.Len() != 0 {
		t.Error("nil series not empty")
	}
	if _, ok := s.Latest(); ok {
		t.Error("nil series has a latest bar")
	}
}

func TestEvaluation_Lookup(t *testing.T) {
	ev := Evaluation{Conditions: []Condition{{"A", true}, {"B", false}}}
	if passed, found := ev.Condition("A"); !passed || !found {
		t.Error("A")
	}
	if _, found := ev.Condition("C"); found {
		t.Error("C found")
	}
	if f := ev.Failed(); len(f) != 1 || f[0] != "B" {
		t.Errorf("Failed = %v", f)
	}
}

func TestReport_Matches(t *testing.T) {
	r := &Report{Rows: []Row{
		{Ticker: "A", Evaluation: Evaluation{Matched: true}},
		{Ticker: "B"},
		{Ticker: "C", Evaluation: Evaluation{Matched: true}},
	}}
	m := r.Matches()
	if len(m) != 2 || m[0].Ticker != "A" || m[1].Ticker != "C" {
		t.Errorf("Matches = %+v", m)
	}
	var nilReport *Report
	if nilReport.Matches() != nil {
		t.Error("nil report has matches")
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		ok     bool
	}{
		{"defaults", func(*Params) {}, true},
		{"zero window", func(p *Params) { p.FastMA = 0 }, false},
		{"negative lookback", func(p *Params) { p.LookbackDays = -1 }, false},
		{"inverted band", func(p *Params) { p.RSILow, p.RSIHigh = 70, 30 }, false},
		{"band over 100", func(p *Params) { p.RSIHigh = 120 }, false},
		{"negative buffer", func(p *Params) { p.BreakoutBuffer = -0.01 }, false},
		{"zero buffer", func(p *Params) { p.BreakoutBuffer = 0 }, true},
		{"zero range", func(p *Params) { p.ConsolidationMaxRange = 0 }, false},
	}
	for _, tt := range tests {
		p := DefaultParams()
		tt.mutate(&p)
		if err := p.Validate(); (err == nil) != tt.ok {
			t.Errorf("%s: err = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}
