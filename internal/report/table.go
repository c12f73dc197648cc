package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"StockScreener/internal/model"
)

// WriteTable prints rows as an aligned console table with the outcome of
// every condition.
func WriteTable(w io.Writer, rows []model.Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tMATCH\tCLOSE\tRSI14\tSMA20\tSMA50\tVOLUME\tVOL20\tCONDITIONS")
	for _, r := range rows {
		s := r.Snapshot
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Ticker,
			matchCell(r.Evaluation),
			dash(price(s.Close)),
			dash(price(s.RSI)),
			dash(price(s.FastMA)),
			dash(price(s.MidMA)),
			dash(volume(s.Volume)),
			dash(volume(s.VolumeMA)),
			conditions(r.Evaluation),
		)
	}
	return tw.Flush()
}

func matchCell(ev model.Evaluation) string {
	switch {
	case ev.Skipped:
		return "skip"
	case ev.Matched:
		return "yes"
	default:
		return "no"
	}
}

func conditions(ev model.Evaluation) string {
	if ev.Skipped {
		return ev.Reason
	}
	parts := make([]string, len(ev.Conditions))
	for i, c := range ev.Conditions {
		mark := "✗"
		if c.Passed {
			mark = "✓"
		}
		parts[i] = mark + c.Name
	}
	return strings.Join(parts, " ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
