// Package metrics exposes Prometheus instrumentation for fetches, caching and indicator runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the analysis pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchDur     *prometheus.HistogramVec // labels: provider
	FetchErrors  *prometheus.CounterVec   // labels: provider
	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter
	IndicatorDur *prometheus.HistogramVec // labels: indicator
	RowsAnalysed *prometheus.GaugeVec     // labels: ticker
	RunsTotal    *prometheus.CounterVec   // labels: status
}

// New creates the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tickerlens_fetch_duration_seconds",
			Help:    "Price history fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_fetch_errors_total",
			Help: "Failed price history fetches",
		}, []string{"provider"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickerlens_cache_hits_total",
			Help: "Price history served from the Redis cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickerlens_cache_misses_total",
			Help: "Price history lookups not found in the Redis cache",
		}),
		IndicatorDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tickerlens_indicator_compute_duration_seconds",
			Help:    "Indicator compute latency over a whole series",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"indicator"}),
		RowsAnalysed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tickerlens_rows_analysed",
			Help: "Rows in the most recent analysed series",
		}, []string{"ticker"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_runs_total",
			Help: "Analysis runs by outcome",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.FetchDur,
		m.FetchErrors,
		m.CacheHits,
		m.CacheMisses,
		m.IndicatorDur,
		m.RowsAnalysed,
		m.RunsTotal,
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFetch(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDur.WithLabelValues(provider).Observe(elapsed.Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(provider).Inc()
	}
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

// ObserveIndicator matches indicator.ObserveFunc.
func (m *Metrics) ObserveIndicator(name string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.IndicatorDur.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (m *Metrics) SetRows(ticker string, rows int) {
	if m != nil {
		m.RowsAnalysed.WithLabelValues(ticker).Set(float64(rows))
	}
}

func (m *Metrics) RunFinished(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}
