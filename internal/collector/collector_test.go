package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"TickerLens/internal/config"
	"TickerLens/internal/metrics"
	"TickerLens/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func mustQuery(t *testing.T, ticker, start, end, interval string) model.Query {
	t.Helper()
	q, err := model.NewQuery(ticker, start, end, interval)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func day(s string) time.Time {
	ts, _ := time.Parse(model.DateLayout, s)
	return ts
}

func fastOpts() HTTPOptions {
	return HTTPOptions{Timeout: 2 * time.Second, MaxRetries: 3, RetryInitial: time.Millisecond}
}

const yahooBody = `{"chart":{"result":[{"timestamp":[%d,%d,%d,%d],
"indicators":{"quote":[{"open":[1,2,null,4],"high":[1.5,2.5,null,4.5],"low":[0.5,1.5,null,3.5],
"close":[1.2,2.2,null,4.2],"volume":[100,200,null,400]}]}}],"error":null}}`

func TestYahooFetcher_ParsesAndSkipsNullBars(t *testing.T) {
	d1, d2, d3, d4 := day("2020-01-02"), day("2020-01-03"), day("2020-01-06"), day("2020-01-07")
	var gotPath, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		// out of order on purpose
		fmt.Fprintf(w, yahooBody, d2.Unix(), d1.Unix(), d3.Unix(), d4.Unix())
	}))
	defer srv.Close()

	f := NewYahooFetcher(fastOpts())
	f.BaseURL = srv.URL
	bars, err := f.FetchBars(context.Background(), mustQuery(t, "SPX", "2020-01-01", "2020-02-01", "1d"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v8/finance/chart/^GSPC" {
		t.Errorf("symbol not mapped, path %q", gotPath)
	}
	if gotInterval != "1d" {
		t.Errorf("interval param %q", gotInterval)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if !bars[0].Time.Equal(d1) || bars[0].Close != 2.2 {
		t.Errorf("bars not sorted ascending: %+v", bars[0])
	}
	if bars[2].Close != 4.2 || bars[2].Volume != 400 {
		t.Errorf("unexpected last bar %+v", bars[2])
	}
}

func TestYahooFetcher_AppliesAdjClose(t *testing.T) {
	d1, d2 := day("2020-08-28"), day("2020-08-31")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// second bar is unadjusted, the first already is
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%d,%d],
"indicators":{"quote":[{"open":[440,2000],"high":[460,2100],"low":[420,1900],"close":[450,2000],"volume":[10,20]}],
"adjclose":[{"adjclose":[450,500]}]}}],"error":null}}`, d1.Unix(), d2.Unix())
	}))
	defer srv.Close()

	f := NewYahooFetcher(fastOpts())
	f.BaseURL = srv.URL
	bars, err := f.FetchBars(context.Background(), mustQuery(t, "TSLA", "2020-08-01", "2020-09-01", "1d"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if b := bars[0]; b.Open != 440 || b.Close != 450 {
		t.Errorf("bar with adjclose == close changed: %+v", b)
	}
	b := bars[1]
	if b.Open != 500 || b.High != 525 || b.Low != 475 || b.Close != 500 || b.Volume != 20 {
		t.Errorf("bar not scaled by adjclose/close: %+v", b)
	}
	if g := bars[1].Close / bars[0].Close; g < 1 || g > 1.2 {
		t.Errorf("split left a jump in the series: growth %v", g)
	}
}

func TestYahooFetcher_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher(fastOpts())
	f.BaseURL = srv.URL
	bars, err := f.FetchBars(context.Background(), mustQuery(t, "NOPE", "2020-01-01", "2020-02-01", "1d"))
	if err != nil || len(bars) != 0 {
		t.Errorf("expected empty result, got %d bars, err %v", len(bars), err)
	}
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	body, err := newHTTPClient(fastOpts()).get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "ok" || atomic.LoadInt32(&calls) != 3 {
		t.Errorf("got %q after %d calls", body, calls)
	}
}

func TestHTTPClient_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "bad key")
	}))
	defer srv.Close()

	_, err := newHTTPClient(fastOpts()).get(context.Background(), srv.URL, nil)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusUnauthorized {
		t.Fatalf("expected *StatusError 401, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("client errors must not be retried, got %d calls", calls)
	}
}

func TestHTTPClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newHTTPClient(fastOpts()).get(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Errorf("expected 1 attempt + 3 retries, got %d", got)
	}
}

func TestRESTFetcher_BearerAndWeeklyFallback(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.URL.Query().Get("interval") == "1wk" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var parts []string
		for i, d := range []string{"2020-01-06", "2020-01-07", "2020-01-08", "2020-01-13", "2020-01-14"} {
			parts = append(parts, fmt.Sprintf(`{"timestamp":%d,"open":%d,"high":%d,"low":%d,"close":%d,"volume":10}`,
				day(d).Unix(), i+1, i+5, i, i+2))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(parts, ","))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", fastOpts())
	bars, err := f.FetchBars(context.Background(), mustQuery(t, "TSLA", "2020-01-01", "2020-02-01", "1wk"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("authorization header %q", auth)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 weekly bars, got %d", len(bars))
	}
	w := bars[0]
	if w.Open != 1 || w.High != 7 || w.Low != 0 || w.Close != 4 || w.Volume != 30 {
		t.Errorf("unexpected first week %+v", w)
	}
}

func TestNormalizeAndRange(t *testing.T) {
	bars := []model.OHLCV{
		{Time: day("2020-01-03"), Close: 3},
		{Time: day("2020-01-01"), Close: 1},
		{Time: day("2020-01-03"), Close: 99},
		{Time: day("2020-01-05"), Close: 5},
	}
	got := inRange(normalize(bars), model.Query{Start: day("2020-01-01"), End: day("2020-01-05")})
	if len(got) != 2 || got[0].Close != 1 || got[1].Close != 3 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestAlpacaTimeFrame(t *testing.T) {
	for _, iv := range []model.Interval{model.Interval90m, model.Interval5d, model.Interval3mo} {
		if _, err := alpacaTimeFrame(iv); err == nil {
			t.Errorf("%s: expected error", iv)
		}
	}
	for _, iv := range []model.Interval{model.Interval1m, model.Interval1h, model.Interval1d, model.Interval1wk} {
		if _, err := alpacaTimeFrame(iv); err != nil {
			t.Errorf("%s: unexpected error %v", iv, err)
		}
	}
}

func TestAlpacaBarsRequestIsAdjusted(t *testing.T) {
	q := mustQuery(t, "TSLA", "2018-01-01", "2022-08-01", "1d")
	req, err := alpacaBarsRequest(q)
	if err != nil {
		t.Fatal(err)
	}
	if req.Adjustment != marketdata.All {
		t.Errorf("adjustment %q, want %q", req.Adjustment, marketdata.All)
	}
	if !req.Start.Equal(q.Start) || !req.End.Equal(q.End) {
		t.Errorf("range %v..%v", req.Start, req.End)
	}
	if _, err := alpacaBarsRequest(mustQuery(t, "TSLA", "2020-01-01", "2020-02-01", "3mo")); err == nil {
		t.Error("expected error for unsupported interval")
	}
}

func TestMockFetcher(t *testing.T) {
	m := &MockFetcher{}
	q := mustQuery(t, "TSLA", "2020-01-01", "2020-03-01", "1d")
	bars, err := m.FetchBars(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 60 {
		t.Errorf("expected 60 daily bars, got %d", len(bars))
	}
	again, _ := m.FetchBars(context.Background(), q)
	if again[30] != bars[30] {
		t.Error("mock bars should be deterministic")
	}

	m.Err = errors.New("down")
	if _, err := m.FetchBars(context.Background(), q); err == nil {
		t.Error("expected injected error")
	}
}

// memStore is an in-memory redisStore.
type memStore struct {
	data   map[string]string
	getErr error
	ttl    time.Duration
}

func (s *memStore) Get(_ context.Context, key string) *goredis.StringCmd {
	if s.getErr != nil {
		return goredis.NewStringResult("", s.getErr)
	}
	v, ok := s.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (s *memStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *goredis.StatusCmd {
	s.data[key] = string(value.([]byte))
	s.ttl = ttl
	return goredis.NewStatusResult("OK", nil)
}

func TestCachedFetcher(t *testing.T) {
	m := metrics.New()
	up := &MockFetcher{}
	store := &memStore{data: map[string]string{}}
	c := newCachedFetcher(up, store, time.Hour, m)
	q := mustQuery(t, "tsla", "2020-01-01", "2020-02-01", "1d")

	first, err := c.FetchBars(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.FetchBars(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if up.Calls != 1 {
		t.Errorf("expected one upstream call, got %d", up.Calls)
	}
	if len(first) != len(second) || !first[5].Time.Equal(second[5].Time) || first[5].Close != second[5].Close {
		t.Error("cached bars differ from upstream bars")
	}
	if _, ok := store.data["bars:mock:TSLA:1d:2020-01-01:2020-02-01"]; !ok {
		t.Errorf("unexpected keys %v", store.data)
	}
	if store.ttl != time.Hour {
		t.Errorf("ttl %v", store.ttl)
	}
	if testutil.ToFloat64(m.CacheHits) != 1 || testutil.ToFloat64(m.CacheMisses) != 1 {
		t.Error("expected one hit and one miss")
	}

	// a broken cache degrades to upstream
	store.getErr = errors.New("connection refused")
	if _, err := c.FetchBars(context.Background(), q); err != nil {
		t.Errorf("cache failure must not fail the fetch: %v", err)
	}
	if up.Calls != 2 {
		t.Errorf("expected upstream fallback, calls %d", up.Calls)
	}
}

func TestNewFetcher(t *testing.T) {
	cfg := &config.Config{}
	cfg.DataSource.Provider = "mock"
	f, err := NewFetcher(cfg, nil)
	if err != nil || f.Name() != "mock" {
		t.Errorf("got %v, %v", f, err)
	}
	cfg.DataSource.Provider = "bloomberg"
	if _, err := NewFetcher(cfg, nil); err == nil {
		t.Error("expected unknown provider error")
	}
}
