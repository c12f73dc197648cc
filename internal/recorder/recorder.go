package recorder

import (
	"time"

	"StockScreener/internal/model"
)

// RunSummary is the stored outline of one screening pass.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Strategy   string    `json:"strategy"`
	Period     string    `json:"period"`
	Interval   string    `json:"interval"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Universe   int       `json:"universe"`
	Evaluated  int       `json:"evaluated"`
	Skipped    int       `json:"skipped"`
	Matches    []string  `json:"matches"`
}

// Summarize builds the summary of a report.
func Summarize(r *model.Report) RunSummary {
	s := RunSummary{
		RunID:      r.RunID,
		Strategy:   r.Strategy,
		Period:     r.Period,
		Interval:   r.Interval,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Universe:   r.Universe,
		Evaluated:  len(r.Rows),
		Skipped:    len(r.Skipped),
		Matches:    []string{},
	}
	for _, m := range r.Matches() {
		s.Matches = append(s.Matches, m.Ticker)
	}
	return s
}

// Recorder persists scan history.
type Recorder interface {
	RecordRun(r *model.Report) error
	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
