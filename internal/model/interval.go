package model

import "time"

// Interval is the sampling interval of a price series.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval2m  Interval = "2m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval60m Interval = "60m"
	Interval90m Interval = "90m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval5d  Interval = "5d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
	Interval3mo Interval = "3mo"
)

// Intervals lists every recognized interval, finest first.
var Intervals = []Interval{
	Interval1m, Interval2m, Interval5m, Interval15m, Interval30m, Interval60m, Interval90m,
	Interval1h, Interval1d, Interval5d, Interval1wk, Interval1mo, Interval3mo,
}

// ParseInterval returns an *InvalidIntervalError when s is not a recognized interval.
func ParseInterval(s string) (Interval, error) {
	for _, iv := range Intervals {
		if string(iv) == s {
			return iv, nil
		}
	}
	return "", &InvalidIntervalError{Interval: s}
}

// Intraday reports whether bars of this interval are shorter than a trading day.
func (iv Interval) Intraday() bool {
	switch iv {
	case Interval1d, Interval5d, Interval1wk, Interval1mo, Interval3mo:
		return false
	}
	return true
}

// Duration is the nominal length of one bar. Month based intervals use 30 days.
func (iv Interval) Duration() time.Duration {
	switch iv {
	case Interval1m:
		return time.Minute
	case Interval2m:
		return 2 * time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval15m:
		return 15 * time.Minute
	case Interval30m:
		return 30 * time.Minute
	case Interval60m, Interval1h:
		return time.Hour
	case Interval90m:
		return 90 * time.Minute
	case Interval1d:
		return 24 * time.Hour
	case Interval5d:
		return 5 * 24 * time.Hour
	case Interval1wk:
		return 7 * 24 * time.Hour
	case Interval1mo:
		return 30 * 24 * time.Hour
	case Interval3mo:
		return 90 * 24 * time.Hour
	}
	return 0
}
