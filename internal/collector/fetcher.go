package collector

import (
	"context"
	"sort"

	"TickerLens/internal/model"
)

// Fetcher defines the interface for fetching a ticker's price history.
// An empty result with a nil error means the source has no data for the query.
type Fetcher interface {
	FetchBars(ctx context.Context, q model.Query) ([]model.OHLCV, error)
	Name() string
}

// normalize sorts bars ascending and keeps the first bar of each timestamp.
func normalize(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// inRange drops bars outside [q.Start, q.End).
func inRange(bars []model.OHLCV, q model.Query) []model.OHLCV {
	out := bars[:0]
	for _, b := range bars {
		if b.Time.Before(q.Start) || !b.Time.Before(q.End) {
			continue
		}
		out = append(out, b)
	}
	return out
}
