package recorder

import (
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"StockScreener/internal/model"
)

func testReport(id string, started time.Time, matched ...string) *model.Report {
	r := &model.Report{
		RunID:      id,
		Strategy:   "pullback",
		Params:     model.DefaultParams(),
		Period:     "2y",
		Interval:   "1d",
		Universe:   len(matched) + 2,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Skipped:    []model.SkippedTicker{{Ticker: "GONE", Reason: "no data"}},
	}
	for _, t := range matched {
		r.Rows = append(r.Rows, model.Row{
			Ticker:     t,
			Evaluation: model.Evaluation{Matched: true, Conditions: []model.Condition{{Name: "Pullback", Passed: true}}},
			Snapshot:   model.Snapshot{Close: model.Some(10), RSI: model.Some(45)},
		})
	}
	r.Rows = append(r.Rows, model.Row{
		Ticker:     "NEW",
		Evaluation: model.Evaluation{Skipped: true, Reason: "insufficient history"},
		Snapshot:   model.Snapshot{Close: model.Some(5)},
	})
	return r
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")
	rec, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rec.Close()

	t0 := time.Date(2024, 6, 14, 21, 0, 0, 0, time.UTC)
	first := testReport("run-1", t0, "AAPL")
	second := testReport("run-2", t0.Add(24*time.Hour), "MSFT", "NVDA")
	for _, r := range []*model.Report{first, second} {
		if err := rec.RecordRun(r); err != nil {
			t.Fatalf("RecordRun %s: %v", r.RunID, err)
		}
	}

	runs, err := rec.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	want := Summarize(second)
	if !reflect.DeepEqual(runs[0], want) {
		t.Errorf("newest run =\n%+v\nwant\n%+v", runs[0], want)
	}
	if runs[1].RunID != "run-1" || !reflect.DeepEqual(runs[1].Matches, []string{"AAPL"}) {
		t.Errorf("older run = %+v", runs[1])
	}

	limited, err := rec.RecentRuns(1)
	if err != nil || len(limited) != 1 || limited[0].RunID != "run-2" {
		t.Errorf("limit 1 = %+v, %v", limited, err)
	}
}

func TestSQLiteRecorder_UndefinedValuesStoredAsNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")
	rec, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	if err := rec.RecordRun(testReport("run-1", time.Now(), "AAPL")); err != nil {
		t.Fatal(err)
	}
	var rsi sql.NullFloat64
	if err := rec.db.QueryRow(`SELECT rsi FROM scan_rows WHERE ticker = 'NEW'`).Scan(&rsi); err != nil {
		t.Fatal(err)
	}
	if rsi.Valid {
		t.Errorf("rsi = %v, want NULL", rsi.Float64)
	}
}

func TestSQLiteRecorder_DuplicateRunRejected(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "screener.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	r := testReport("run-1", time.Now(), "AAPL")
	if err := rec.RecordRun(r); err != nil {
		t.Fatal(err)
	}
	if err := rec.RecordRun(r); err == nil {
		t.Error("duplicate run id accepted")
	}
	var n int
	rec.db.QueryRow(`SELECT COUNT(*) FROM scan_rows`).Scan(&n)
	if n != 2 {
		t.Errorf("rows = %d, want 2 (failed run rolled back)", n)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordRun(&model.Report{}); err != nil {
		t.Error(err)
	}
	if runs, err := r.RecentRuns(5); err != nil || len(runs) != 0 {
		t.Errorf("runs = %v, %v", runs, err)
	}
}
