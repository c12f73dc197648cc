package report

import (
	"fmt"
	"html"
	"strings"

	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// maxListed caps the matches spelled out in one message.
const maxListed = 30

// FormatTelegram formats a screening pass into an HTML Telegram message.
func FormatTelegram(r *model.Report) string {
	if r == nil {
		return "📭 No scan has run yet."
	}
	var b strings.Builder

	name := r.Strategy
	if k, err := strategy.ParseKind(r.Strategy); err == nil {
		name = k.String()
	}
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(name), r.FinishedAt.Format("2006-01-02 15:04")))

	matches := r.Matches()
	b.WriteString(fmt.Sprintf("Scanned: %d | Evaluated: %d | Skipped: %d\n", r.Universe, len(r.Rows), len(r.Skipped)))
	b.WriteString(fmt.Sprintf("✅ <b>Matches: %d</b>\n", len(matches)))

	if len(matches) == 0 {
		b.WriteString("\nNo ticker met every condition.")
		return b.String()
	}

	b.WriteString("\n")
	for i, m := range matches {
		if i == maxListed {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(matches)-maxListed))
			break
		}
		s := m.Snapshot
		b.WriteString(fmt.Sprintf("<b>%s</b> close %s | RSI %s | SMA20 %s | SMA50 %s\n",
			html.EscapeString(m.Ticker), dash(price(s.Close)), dash(price(s.RSI)),
			dash(price(s.FastMA)), dash(price(s.MidMA))))
	}
	return b.String()
}

// FormatStrategies lists the available strategies for the /strategies command.
func FormatStrategies(current strategy.Kind) string {
	var b strings.Builder
	b.WriteString("📋 <b>Strategies</b>\n\n")
	for _, k := range strategy.Kinds() {
		marker := "  "
		if k == current {
			marker = "▶ "
		}
		b.WriteString(fmt.Sprintf("%s<code>%s</code> %s\n", marker, k.Slug(), html.EscapeString(k.String())))
	}
	return b.String()
}
