package collector

import (
	"context"
	"fmt"
	"strings"

	"TickerLens/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// AlpacaFetcher implements Fetcher using the Alpaca market data API.
type AlpacaFetcher struct {
	client *marketdata.Client
}

// NewAlpacaFetcher creates a fetcher authenticated with an Alpaca key pair.
// baseURL may be empty to use the public data endpoint.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// alpacaTimeFrame maps an interval onto an Alpaca bar time frame.
func alpacaTimeFrame(iv model.Interval) (marketdata.TimeFrame, error) {
	switch iv {
	case model.Interval1m:
		return marketdata.OneMin, nil
	case model.Interval2m:
		return marketdata.NewTimeFrame(2, marketdata.Min), nil
	case model.Interval5m:
		return marketdata.NewTimeFrame(5, marketdata.Min), nil
	case model.Interval15m:
		return marketdata.NewTimeFrame(15, marketdata.Min), nil
	case model.Interval30m:
		return marketdata.NewTimeFrame(30, marketdata.Min), nil
	case model.Interval60m, model.Interval1h:
		return marketdata.OneHour, nil
	case model.Interval1d:
		return marketdata.OneDay, nil
	case model.Interval1wk:
		return marketdata.NewTimeFrame(1, marketdata.Week), nil
	case model.Interval1mo:
		return marketdata.NewTimeFrame(1, marketdata.Month), nil
	}
	return marketdata.TimeFrame{}, fmt.Errorf("alpaca has no time frame for interval %q", iv)
}

// alpacaBarsRequest builds a request for split and dividend adjusted bars.
func alpacaBarsRequest(q model.Query) (marketdata.GetBarsRequest, error) {
	tf, err := alpacaTimeFrame(q.Interval)
	if err != nil {
		return marketdata.GetBarsRequest{}, err
	}
	return marketdata.GetBarsRequest{
		TimeFrame:  tf,
		Start:      q.Start,
		End:        q.End,
		Adjustment: marketdata.All,
	}, nil
}

// FetchBars requests adjusted bars for [q.Start, q.End).
func (f *AlpacaFetcher) FetchBars(ctx context.Context, q model.Query) ([]model.OHLCV, error) {
	req, err := alpacaBarsRequest(q)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := f.client.GetBars(strings.ToUpper(q.Ticker), req)
	if err != nil {
		return nil, fmt.Errorf("alpaca get bars: %w", err)
	}

	out := make([]model.OHLCV, len(bars))
	for i, b := range bars {
		out[i] = model.OHLCV{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return inRange(normalize(out), q), nil
}
