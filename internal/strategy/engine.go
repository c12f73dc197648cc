package strategy

import (
	"fmt"

	"StockScreener/internal/model"
)

// Evaluate runs one strategy over the latest bar of a series. It never panics:
// missing history, an unknown kind or a failure inside the rule yields an
// unmatched, skipped evaluation. The snapshot is filled whenever bars exist.
func Evaluate(kind Kind, series *model.BarSeries, p model.Params) (ev model.Evaluation, snap model.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			ev = skipped(fmt.Sprintf("evaluation error: %v", r))
		}
	}()

	if series.Empty() {
		return skipped("no data"), model.Snapshot{}
	}
	frame := NewFrame(series.Bars, p)
	snap = frame.Snapshot()
	return EvaluateFrame(kind, frame, p), snap
}

// EvaluateFrame runs one strategy over an already computed frame.
func EvaluateFrame(kind Kind, f *Frame, p model.Params) (ev model.Evaluation) {
	defer func() {
		if r := recover(); r != nil {
			ev = skipped(fmt.Sprintf("evaluation error: %v", r))
		}
	}()

	r, ok := rules[kind]
	if !ok {
		return skipped(fmt.Sprintf("unknown strategy %d", int(kind)))
	}
	if need := MinBars(kind, p); f.Len() < need {
		return skipped(fmt.Sprintf("insufficient history: have %d bars, need %d", f.Len(), need))
	}

	conds := r.check(f, p)
	matched := len(conds) > 0
	for _, c := range conds {
		matched = matched && c.Passed
	}
	return model.Evaluation{Matched: matched, Conditions: conds}
}

func skipped(reason string) model.Evaluation {
	return model.Evaluation{Skipped: true, Reason: reason}
}
