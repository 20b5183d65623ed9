package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of the start/end boundaries of a Query.
const DateLayout = "2006-01-02"

// Defaults applied by NewQuery when a boundary or the interval is left empty.
const (
	DefaultStart    = "2018-01-01"
	DefaultEnd      = "2022-08-01"
	DefaultInterval = Interval1d
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Query describes the price history requested from a data source.
// Start is inclusive, End is exclusive.
type Query struct {
	Ticker   string
	Start    time.Time
	End      time.Time
	Interval Interval
}

// NewQuery validates the interval before anything else, then parses the date range.
func NewQuery(ticker, start, end, interval string) (Query, error) {
	if interval == "" {
		interval = string(DefaultInterval)
	}
	iv, err := ParseInterval(interval)
	if err != nil {
		return Query{}, err
	}

	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Query{}, fmt.Errorf("ticker is required")
	}
	if start == "" {
		start = DefaultStart
	}
	if end == "" {
		end = DefaultEnd
	}
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return Query{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return Query{}, fmt.Errorf("parse end date %q: %w", end, err)
	}
	if !to.After(from) {
		return Query{}, fmt.Errorf("end date %s must be after start date %s", end, start)
	}

	return Query{Ticker: ticker, Start: from, End: to, Interval: iv}, nil
}

func (q Query) String() string {
	return fmt.Sprintf("%s [%s, %s) @%s", q.Ticker, q.Start.Format(DateLayout), q.End.Format(DateLayout), q.Interval)
}
