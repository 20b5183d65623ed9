package export

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"TickerLens/internal/model"
	"TickerLens/internal/series"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func sampleTable() *series.Table {
	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 4)
	for i := range bars {
		p := float64(20 + i)
		bars[i] = model.OHLCV{Time: base.AddDate(0, 0, i), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 5}
	}
	t := series.NewTable("AAPL", model.Interval1d, bars)
	t.Set("rs", series.Column{{}, series.Value(math.Inf(1)), series.Value(0.5), series.Value(2)})
	return t
}

func TestCSVExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "aapl.csv")
	if err := NewCSVExporter(path).Export(context.Background(), sampleTable()); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(records))
	}
	header := records[0]
	want := []string{"Date", "Open", "High", "Low", "Close", "Volume", "rs"}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}
	tests := []struct {
		row  int
		col  int
		want string
	}{
		{1, 0, "2021-03-01"},
		{1, 4, "20"},
		{1, 6, ""},
		{2, 6, "+Inf"},
		{3, 6, "0.5"},
	}
	for _, tt := range tests {
		if got := records[tt.row][tt.col]; got != tt.want {
			t.Errorf("cell[%d][%d] = %q, want %q", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestParquetExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aapl.parquet")
	if err := NewParquetExporter(path).Export(context.Background(), sampleTable()); err != nil {
		t.Fatalf("export: %v", err)
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(Cell), 1)
	if err != nil {
		t.Fatal(err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	if num != 24 {
		t.Fatalf("expected 6 columns x 4 rows, got %d", num)
	}
	cells := make([]Cell, num)
	if err := pr.Read(&cells); err != nil {
		t.Fatal(err)
	}

	var undefined, inf int
	for _, c := range cells {
		if c.Ticker != "AAPL" {
			t.Errorf("ticker %q", c.Ticker)
		}
		if c.Column != "rs" {
			continue
		}
		switch {
		case c.Value == nil:
			undefined++
		case math.IsInf(*c.Value, 1):
			inf++
		}
	}
	if undefined != 1 || inf != 1 {
		t.Errorf("rs column: %d undefined, %d infinite", undefined, inf)
	}
}
