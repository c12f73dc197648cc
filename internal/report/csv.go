package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// Header is the fixed CSV column order.
var Header = []string{"Ticker", "Meets_Entry", "Close", "RSI14", "SMA20", "SMA50", "Volume", "VOL20"}

// WriteCSV writes one line per row. Prices are rounded to two decimals,
// volumes truncated to integers and undefined readings left empty.
func WriteCSV(w io.Writer, rows []model.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		s := r.Snapshot
		rec := []string{
			r.Ticker,
			boolCell(r.Evaluation.Matched),
			price(s.Close),
			price(s.RSI),
			price(s.FastMA),
			price(s.MidMA),
			volume(s.Volume),
			volume(s.VolumeMA),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFileName names the download of a strategy's matches,
// e.g. "MA_Crossover_matches.csv".
func CSVFileName(kind strategy.Kind) string {
	return strings.ReplaceAll(kind.String(), " ", "_") + "_matches.csv"
}

func boolCell(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func price(v model.Value) string {
	f, ok := v.Float()
	if !ok {
		return ""
	}
	return decimal.NewFromFloat(f).Round(2).String()
}

func volume(v model.Value) string {
	f, ok := v.Float()
	if !ok {
		return ""
	}
	return decimal.NewFromFloat(f).Truncate(0).String()
}
