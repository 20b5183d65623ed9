// Package collector fetches a ticker's OHLCV history from market data providers.
package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"TickerLens/internal/config"
	"TickerLens/internal/metrics"
	"TickerLens/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func logger() *zerolog.Logger {
	l := log.With().Str("component", "collector").Logger()
	return &l
}

// maxMockBars caps generated series so fine intervals over long ranges stay small.
const maxMockBars = 5000

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Data  []model.OHLCV // served as-is (clipped to the query range) when set
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, q model.Query) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Data != nil {
		return inRange(normalize(append([]model.OHLCV(nil), m.Data...)), q), nil
	}
	return generateMockBars(m.Price, q), nil
}

// generateMockBars produces a deterministic oscillating series covering [q.Start, q.End).
func generateMockBars(basePrice float64, q model.Query) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	step := q.Interval.Duration()
	if step <= 0 {
		step = 24 * time.Hour
	}
	var bars []model.OHLCV
	for i, ts := 0, q.Start; ts.Before(q.End) && i < maxMockBars; i, ts = i+1, ts.Add(step) {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/7) + 0.0005*float64(i))
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000 + float64(i%10)*10000,
		})
	}
	return bars
}

// Instrumented records fetch latency and failures for the wrapped Fetcher.
type Instrumented struct {
	next    Fetcher
	metrics *metrics.Metrics
}

func NewInstrumented(next Fetcher, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (i *Instrumented) Name() string { return i.next.Name() }

func (i *Instrumented) FetchBars(ctx context.Context, q model.Query) ([]model.OHLCV, error) {
	began := time.Now()
	bars, err := i.next.FetchBars(ctx, q)
	i.metrics.ObserveFetch(i.next.Name(), time.Since(began), err)
	if err != nil {
		logger().Error().Err(err).Str("provider", i.next.Name()).Str("query", q.String()).Msg("fetch failed")
	} else {
		logger().Debug().Str("provider", i.next.Name()).Int("bars", len(bars)).Dur("took", time.Since(began)).Msg("fetched")
	}
	return bars, err
}

// NewFetcher builds the configured provider, instrumented and optionally cached.
// An unreachable Redis only disables the cache.
func NewFetcher(cfg *config.Config, m *metrics.Metrics) (Fetcher, error) {
	opts := HTTPOptions{
		Proxy:          cfg.Proxy,
		Timeout:        cfg.DataSource.Timeout,
		RequestsPerSec: cfg.DataSource.RequestsPerSec,
		MaxRetries:     cfg.DataSource.MaxRetries,
	}

	var f Fetcher
	switch cfg.DataSource.Provider {
	case "yahoo":
		y := NewYahooFetcher(opts)
		if cfg.DataSource.BaseURL != "" {
			y.BaseURL = cfg.DataSource.BaseURL
		}
		f = y
	case "alpaca":
		f = NewAlpacaFetcher(cfg.DataSource.APIKey, cfg.DataSource.APISecret, cfg.DataSource.BaseURL)
	case "rest":
		f = NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, opts)
	case "mock":
		f = &MockFetcher{Price: 100}
	default:
		return nil, fmt.Errorf("unknown data source provider %q", cfg.DataSource.Provider)
	}

	if cfg.Cache.RedisAddr != "" {
		cached, err := NewCachedFetcher(f, CacheConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		}, m)
		if err != nil {
			logger().Warn().Err(err).Msg("redis cache disabled")
		} else {
			f = cached
		}
	}

	logger().Info().Str("provider", f.Name()).Msg("data source ready")
	return NewInstrumented(f, m), nil
}
