package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("yahoo", time.Second, errors.New("boom"))
	m.CacheHit()
	m.CacheMiss()
	m.ObserveIndicator("RSI", time.Millisecond)
	m.SetRows("TSLA", 10)
	m.RunFinished(nil)
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveFetch("yahoo", 10*time.Millisecond, nil)
	m.ObserveFetch("yahoo", 10*time.Millisecond, errors.New("boom"))
	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.SetRows("TSLA", 1153)
	m.RunFinished(nil)
	m.RunFinished(errors.New("x"))

	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("yahoo")); got != 1 {
		t.Errorf("fetch errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheHits); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheMisses); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RowsAnalysed.WithLabelValues("TSLA")); got != 1153 {
		t.Errorf("rows = %v, want 1153", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveIndicator("MACD", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `tickerlens_indicator_compute_duration_seconds_count{indicator="MACD"} 1`) {
		t.Errorf("indicator histogram missing from output:\n%s", body)
	}
}
