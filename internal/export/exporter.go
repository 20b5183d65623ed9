// Package export writes an analysed price table to files.
package export

import (
	"context"

	"TickerLens/internal/series"
)

// Exporter receives the finished table of a run.
type Exporter interface {
	Name() string
	Export(ctx context.Context, view series.View) error
}
