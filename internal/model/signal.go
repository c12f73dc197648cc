package model

import "time"

// Condition is one named check of a strategy.
type Condition struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// Evaluation is the verdict of one strategy for the latest bar of one ticker.
type Evaluation struct {
	Matched    bool        `json:"matched"`
	Conditions []Condition `json:"conditions"`
	Skipped    bool        `json:"skipped,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

// Condition returns the outcome of the named condition.
func (e Evaluation) Condition(name string) (passed, found bool) {
	for _, c := range e.Conditions {
		if c.Name == name {
			return c.Passed, true
		}
	}
	return false, false
}

// Failed lists the names of conditions that did not hold.
func (e Evaluation) Failed() []string {
	var out []string
	for _, c := range e.Conditions {
		if !c.Passed {
			out = append(out, c.Name)
		}
	}
	return out
}

// Snapshot holds latest-bar values for tabular display.
type Snapshot struct {
	Close    Value `json:"close"`
	RSI      Value `json:"rsi"`
	FastMA   Value `json:"fast_ma"`
	MidMA    Value `json:"mid_ma"`
	SlowMA   Value `json:"slow_ma"`
	Volume   Value `json:"volume"`
	VolumeMA Value `json:"volume_ma"`
}

// Row is the outcome for one ticker in a screening pass.
type Row struct {
	Ticker     string     `json:"ticker"`
	Evaluation Evaluation `json:"evaluation"`
	Snapshot   Snapshot   `json:"snapshot"`
}

// SkippedTicker is a ticker dropped from the report because no data was available.
type SkippedTicker struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// Report aggregates a screening pass.
type Report struct {
	RunID      string          `json:"run_id"`
	Strategy   string          `json:"strategy"`
	Params     Params          `json:"params"`
	Period     string          `json:"period"`
	Interval   string          `json:"interval"`
	Universe   int             `json:"universe"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Rows       []Row           `json:"rows"`
	Skipped    []SkippedTicker `json:"skipped"`
}

// Matches returns the rows whose evaluation matched.
func (r *Report) Matches() []Row {
	if r == nil {
		return nil
	}
	var out []Row
	for _, row := range r.Rows {
		if row.Evaluation.Matched {
			out = append(out, row)
		}
	}
	return out
}
