package universe

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyUniverse means there is nothing to scan.
var ErrEmptyUniverse = errors.New("no universe to scan")

// Source supplies the tickers of one screening pass.
type Source interface {
	Tickers(ctx context.Context) ([]string, error)
}

// sp500 is a liquid subset of the S&P 500.
var sp500 = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA", "JPM", "V", "JNJ", "UNH", "HD", "PG", "MA",
	"DIS", "PYPL", "BAC", "CMCSA", "ADBE", "NFLX", "KO", "XOM", "NKE", "PFE", "MRK", "VZ", "INTC",
	"T", "CSCO", "PEP", "ABT", "CVX", "CRM", "ACN", "WMT", "ORCL", "ABBV", "COST", "AVGO", "QCOM",
	"MDT", "MCD", "TXN", "LLY", "NEE", "DHR", "BMY", "HON", "PM", "UNP", "LIN", "LOW", "IBM", "SBUX",
	"RTX", "GE", "AMD", "ALNY", "LYB", "DD", "LNG", "PSX", "LDOS", "GH", "MSTR",
}

// Static is a fixed ticker list.
type Static []string

// SP500 returns the built-in universe.
func SP500() Static { return Static(append([]string(nil), sp500...)) }

func (s Static) Tickers(_ context.Context) ([]string, error) {
	return Clean(s)
}

// File reads tickers from a text file with one ticker per line, or from the
// first column of a CSV file. Blank lines and lines starting with # are
// ignored, as is a leading "ticker"/"symbol" header.
type File struct {
	Path string
}

func (f File) Tickers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer fh.Close()

	var raw []string
	if strings.HasSuffix(strings.ToLower(f.Path), ".csv") {
		raw, err = readCSV(fh)
	} else {
		raw, err = readLines(fh)
	}
	if err != nil {
		return nil, fmt.Errorf("read universe file %s: %w", f.Path, err)
	}
	return Clean(raw)
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

func readCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, rec := range records {
		if len(rec) > 0 {
			out = append(out, rec[0])
		}
	}
	return out, nil
}

// Clean upper-cases and trims tickers, drops comments, headers and
// duplicates while preserving order. An empty result is ErrEmptyUniverse.
func Clean(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for i, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || strings.HasPrefix(t, "#") || seen[t] {
			continue
		}
		if i == 0 && (t == "TICKER" || t == "SYMBOL") {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ErrEmptyUniverse
	}
	return out, nil
}
