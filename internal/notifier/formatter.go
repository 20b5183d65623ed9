package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"text/tabwriter"

	"TickerLens/internal/analyzer"
	"TickerLens/internal/indicator"
	"TickerLens/internal/series"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// ratioColumns are shown with more precision than prices.
var ratioColumns = map[string]bool{
	indicator.ColPrevGrowth: true,
	indicator.ColNextGrowth: true,
}

func formatDecimal(v float64, places int32) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func formatCell(name string, v null.Float, undefined string) string {
	if !v.Valid {
		return undefined
	}
	if ratioColumns[name] {
		return formatDecimal(v.Float64, 4)
	}
	return formatDecimal(v.Float64, 2)
}

// FormatSummary formats the latest values of an analysis into a Telegram message.
func FormatSummary(s analyzer.Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>TickerLens</b> | %s @%s\n\n", html.EscapeString(s.Ticker), s.Interval))
	if s.Rows == 0 {
		b.WriteString("No observations.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Rows: %d (%s → %s)\n\n", s.Rows, s.First.Format("2006-01-02"), s.Last.Format("2006-01-02")))

	b.WriteString("📈 <b>Latest values:</b>\n")
	for _, l := range s.Latest {
		line := fmt.Sprintf("  %s: %s", html.EscapeString(l.Column), formatCell(l.Column, l.Value, "n/a"))
		if l.Value.Valid && !l.Time.Equal(s.Last) {
			line += fmt.Sprintf(" (%s)", l.Time.Format("2006-01-02"))
		}
		b.WriteString(line + "\n")
	}

	if rsi, ok := s.Value(indicator.ColRSI); ok && rsi.Valid {
		switch {
		case rsi.Float64 >= 70:
			b.WriteString("\n⚠️ RSI above 70\n")
		case rsi.Float64 <= 30:
			b.WriteString("\n⚠️ RSI below 30\n")
		}
	}
	return b.String()
}

// FormatHead renders the first n rows of the table as aligned plain text.
// Undefined cells print as NaN.
func FormatHead(view series.View, n int) string {
	if n > view.Len() {
		n = view.Len()
	}
	if n < 0 {
		n = 0
	}
	names := view.Names()
	cols := make([]series.Column, len(names))
	for i, name := range names {
		cols[i], _ = view.Column(name)
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Date\t%s\t\n", strings.Join(names, "\t"))
	layout := "2006-01-02"
	if view.Interval().Intraday() {
		layout = "2006-01-02 15:04"
	}
	for i := 0; i < n; i++ {
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = formatCell(names[j], col[i], "NaN")
		}
		fmt.Fprintf(w, "%s\t%s\t\n", view.Time(i).Format(layout), strings.Join(cells, "\t"))
	}
	w.Flush()
	return b.String()
}

// FormatError formats a failed run.
func FormatError(ticker string, err error) string {
	return fmt.Sprintf("❌ <b>TickerLens</b> | %s\n\nAnalysis failed: %s", html.EscapeString(ticker), html.EscapeString(err.Error()))
}
