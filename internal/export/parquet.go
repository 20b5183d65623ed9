package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"TickerLens/internal/series"

	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// Cell is one (timestamp, column) value of a table in long format.
type Cell struct {
	Ticker    string   `parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Timestamp int64    `parquet:"name=timestamp, type=INT64, encoding=DELTA_BINARY_PACKED"`
	Date      string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Column    string   `parquet:"name=column, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value     *float64 `parquet:"name=value, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// ParquetExporter writes the table in long format, one record per defined or undefined cell.
type ParquetExporter struct {
	Path string
}

func NewParquetExporter(path string) *ParquetExporter { return &ParquetExporter{Path: path} }

func (e *ParquetExporter) Name() string { return "parquet" }

func (e *ParquetExporter) Export(ctx context.Context, view series.View) error {
	if err := os.MkdirAll(filepath.Dir(e.Path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	fw, err := local.NewLocalFileWriter(e.Path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(Cell), 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_GZIP
	pw.PageSize = 8 * 1024

	n := 0
	for _, name := range view.Names() {
		if err := ctx.Err(); err != nil {
			pw.WriteStop()
			return err
		}
		col, _ := view.Column(name)
		for i, v := range col {
			ts := view.Time(i)
			cell := Cell{
				Ticker:    view.Ticker(),
				Timestamp: ts.Unix(),
				Date:      ts.Format("2006-01-02"),
				Column:    name,
			}
			if v.Valid {
				val := v.Float64
				cell.Value = &val
			}
			if err := pw.Write(cell); err != nil {
				return fmt.Errorf("failed to write parquet data: %w", err)
			}
			n++
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	log.Info().Str("path", e.Path).Int("cells", n).Msg("parquet written")
	return nil
}
