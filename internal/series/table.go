package series

import (
	"fmt"
	"time"

	"TickerLens/internal/model"
)

// Base column names, always present and always first.
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

var baseColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// View is the read-only face of a Table handed to reporters and exporters.
type View interface {
	Ticker() string
	Interval() model.Interval
	Len() int
	Time(i int) time.Time
	Names() []string
	Column(name string) (Column, bool)
}

// Table is an ordered OHLCV series with named derived columns.
// Rows are never reordered, dropped or added after construction.
type Table struct {
	ticker   string
	interval model.Interval

	index  []time.Time
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64

	derived map[string]Column
	order   []string
}

// NewTable copies bars into a table, keeping their order.
func NewTable(ticker string, interval model.Interval, bars []model.OHLCV) *Table {
	n := len(bars)
	t := &Table{
		ticker:   ticker,
		interval: interval,
		index:    make([]time.Time, n),
		Open:     make([]float64, n),
		High:     make([]float64, n),
		Low:      make([]float64, n),
		Close:    make([]float64, n),
		Volume:   make([]float64, n),
		derived:  make(map[string]Column),
	}
	for i, b := range bars {
		t.index[i] = b.Time
		t.Open[i] = b.Open
		t.High[i] = b.High
		t.Low[i] = b.Low
		t.Close[i] = b.Close
		t.Volume[i] = b.Volume
	}
	return t
}

func (t *Table) Ticker() string           { return t.ticker }
func (t *Table) Interval() model.Interval { return t.interval }
func (t *Table) Len() int                 { return len(t.index) }
func (t *Table) Time(i int) time.Time     { return t.index[i] }

// Set stores col under name. An existing column of that name is overwritten in place.
func (t *Table) Set(name string, col Column) {
	if len(col) != t.Len() {
		panic(fmt.Sprintf("series: column %q has %d rows, table has %d", name, len(col), t.Len()))
	}
	for _, b := range baseColumns {
		if b == name {
			panic(fmt.Sprintf("series: cannot overwrite base column %q", name))
		}
	}
	if _, ok := t.derived[name]; !ok {
		t.order = append(t.order, name)
	}
	t.derived[name] = col
}

// Names lists base columns followed by derived columns in insertion order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(baseColumns)+len(t.order))
	names = append(names, baseColumns...)
	return append(names, t.order...)
}

// Derived lists only the derived columns in insertion order.
func (t *Table) Derived() []string {
	return append([]string(nil), t.order...)
}

// Column returns a copy of the named column. Base columns are converted on the fly.
func (t *Table) Column(name string) (Column, bool) {
	switch name {
	case ColOpen:
		return FromFloats(t.Open), true
	case ColHigh:
		return FromFloats(t.High), true
	case ColLow:
		return FromFloats(t.Low), true
	case ColClose:
		return FromFloats(t.Close), true
	case ColVolume:
		return FromFloats(t.Volume), true
	}
	col, ok := t.derived[name]
	if !ok {
		return nil, false
	}
	return append(Column(nil), col...), true
}
