package model

import (
	"fmt"
	"strings"
)

// DataUnavailableError is returned when a source has no observations for a query.
type DataUnavailableError struct {
	Query Query
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no price data available for %s", e.Query)
}

// InvalidIntervalError is returned for an interval outside the recognized set.
type InvalidIntervalError struct {
	Interval string
}

func (e *InvalidIntervalError) Error() string {
	valid := make([]string, len(Intervals))
	for i, iv := range Intervals {
		valid[i] = string(iv)
	}
	return fmt.Sprintf("invalid interval %q (valid: %s)", e.Interval, strings.Join(valid, ","))
}
