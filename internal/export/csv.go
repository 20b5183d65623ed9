package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"TickerLens/internal/series"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"
)

// CSVExporter writes one row per observation: Date followed by every column in table order.
// Undefined cells are empty and infinite cells are written as +Inf.
type CSVExporter struct {
	Path string
}

func NewCSVExporter(path string) *CSVExporter { return &CSVExporter{Path: path} }

func (e *CSVExporter) Name() string { return "csv" }

func (e *CSVExporter) Export(ctx context.Context, view series.View) error {
	if err := os.MkdirAll(filepath.Dir(e.Path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(e.Path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	names := view.Names()
	cols := make([]series.Column, len(names))
	for i, name := range names {
		cols[i], _ = view.Column(name)
	}

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"Date"}, names...)); err != nil {
		return err
	}
	layout := dateLayout(view)
	record := make([]string, len(names)+1)
	for i := 0; i < view.Len(); i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		record[0] = view.Time(i).Format(layout)
		for j, col := range cols {
			record[j+1] = formatCell(col[i])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	log.Info().Str("path", e.Path).Int("rows", view.Len()).Msg("csv written")
	return f.Close()
}

func formatCell(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

// dateLayout keeps daily and coarser series date-only.
func dateLayout(view series.View) string {
	if view.Interval().Intraday() {
		return "2006-01-02 15:04:05"
	}
	return "2006-01-02"
}
