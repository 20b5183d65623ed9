package scheduler

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"TickerLens/internal/analyzer"
	"TickerLens/internal/model"

	"github.com/guregu/null/v6"
)

type stubAnalyzer struct {
	err   error
	calls int
}

func (a *stubAnalyzer) Run(_ context.Context, q model.Query) (*analyzer.Result, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &analyzer.Result{Summary: analyzer.Summary{Ticker: q.Ticker, Interval: q.Interval, Rows: 3}}, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

func fixedQuery() (model.Query, error) {
	return model.NewQuery("TSLA", "2020-01-01", "2021-01-01", "1d")
}

func TestRunNowKeepsLastSummary(t *testing.T) {
	a := &stubAnalyzer{}
	snd := &recordingSender{}
	s := NewScheduler(context.Background(), a, snd, fixedQuery)

	if _, ok := s.Last(); ok {
		t.Fatal("no summary expected before the first run")
	}
	if got := s.HandleCommand("/latest"); !strings.Contains(got, "No analysis") {
		t.Errorf("unexpected reply %q", got)
	}

	s.RunNow()
	sum, ok := s.Last()
	if !ok || sum.Ticker != "TSLA" || sum.Rows != 3 {
		t.Fatalf("unexpected last summary %+v", sum)
	}
	if len(snd.sent) != 1 || !strings.Contains(snd.sent[0], "TSLA") {
		t.Errorf("expected one summary message, got %v", snd.sent)
	}
	if got := s.HandleCommand("/latest"); !strings.Contains(got, "Rows: 3") {
		t.Errorf("unexpected /latest reply %q", got)
	}
}

func TestFailedRunKeepsPreviousSummary(t *testing.T) {
	a := &stubAnalyzer{}
	snd := &recordingSender{}
	s := NewScheduler(context.Background(), a, snd, fixedQuery)
	s.RunNow()

	a.err = errors.New("upstream down")
	s.RunNow()
	if _, ok := s.Last(); !ok {
		t.Error("a failed run must not drop the previous summary")
	}
	if last := snd.sent[len(snd.sent)-1]; !strings.Contains(last, "upstream down") {
		t.Errorf("expected failure message, got %q", last)
	}
}

func TestHandleCommand(t *testing.T) {
	a := &stubAnalyzer{}
	s := NewScheduler(context.Background(), a, nil, fixedQuery)

	if got := s.HandleCommand("/run"); got != "" || a.calls != 1 {
		t.Errorf("/run: reply %q calls %d", got, a.calls)
	}
	if got := s.HandleCommand("/help"); !strings.Contains(got, "/latest") {
		t.Errorf("help text %q", got)
	}
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), &stubAnalyzer{}, nil, fixedQuery)
	if err := s.Register("0 30 22 * * 1-5"); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestStateSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "last.json")

	first := NewScheduler(context.Background(), &stubAnalyzer{}, nil, fixedQuery)
	first.StateFile = path
	first.RunNow()

	second := NewScheduler(context.Background(), &stubAnalyzer{}, nil, fixedQuery)
	second.StateFile = path
	if err := second.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	sum, ok := second.Last()
	if !ok || sum.Ticker != "TSLA" || sum.Rows != 3 {
		t.Errorf("unexpected restored summary %+v", sum)
	}
}

func TestSaveLoadStateKeepsInfAndUndefined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	in := analyzer.Summary{
		Ticker: "X",
		Latest: []analyzer.Latest{
			{Column: "rs", Value: null.FloatFrom(math.Inf(1))},
			{Column: "30 MA"},
			{Column: "rsi", Value: null.FloatFrom(42.125)},
		},
	}
	if err := SaveState(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := LoadState(path)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Latest[0].Value.Valid || !math.IsInf(out.Latest[0].Value.Float64, 1) {
		t.Errorf("inf lost: %+v", out.Latest[0])
	}
	if out.Latest[1].Value.Valid {
		t.Errorf("undefined became defined: %+v", out.Latest[1])
	}
	if out.Latest[2].Value.Float64 != 42.125 {
		t.Errorf("value changed: %+v", out.Latest[2])
	}

	missing, err := LoadState(filepath.Join(t.TempDir(), "none.json"))
	if err != nil || missing != nil {
		t.Errorf("missing file: %v, %v", missing, err)
	}
}
