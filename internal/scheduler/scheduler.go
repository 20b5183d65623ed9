// Package scheduler re-runs the analysis on a cron schedule and answers chat commands.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"TickerLens/internal/analyzer"
	"TickerLens/internal/model"
	"TickerLens/internal/notifier"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Analyzer runs one analysis.
type Analyzer interface {
	Run(ctx context.Context, q model.Query) (*analyzer.Result, error)
}

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// QueryFunc returns the query for the next run, so rolling windows can move forward.
type QueryFunc func() (model.Query, error)

// Scheduler manages the analysis cron task and keeps the latest summary.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Notifier Sender
	Query    QueryFunc
	Ctx      context.Context

	// StateFile, when set, persists the last summary across restarts.
	StateFile string

	mu      sync.Mutex
	last    *analyzer.Summary
	lastErr error
	logger  zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a Analyzer, n Sender, q QueryFunc) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: a,
		Notifier: n,
		Query:    q,
		Ctx:      ctx,
		logger:   log.With().Str("component", "scheduler").Logger(),
	}
}

// Restore loads the last summary from StateFile, if any.
func (s *Scheduler) Restore() error {
	if s.StateFile == "" {
		return nil
	}
	sum, err := LoadState(s.StateFile)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if sum != nil {
		s.mu.Lock()
		s.last = sum
		s.mu.Unlock()
		s.logger.Info().Str("ticker", sum.Ticker).Time("generated_at", sum.GeneratedAt).Msg("restored last summary")
	}
	return nil
}

// Register adds the analysis task on a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.analysisTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes the analysis task immediately (for manual trigger / run on start).
func (s *Scheduler) RunNow() {
	s.analysisTask()
}

// Last returns the summary of the latest successful run.
func (s *Scheduler) Last() (analyzer.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return analyzer.Summary{}, false
	}
	return *s.last, true
}

func (s *Scheduler) analysisTask() {
	q, err := s.Query()
	if err != nil {
		s.logger.Error().Err(err).Msg("build query")
		s.trySend(notifier.FormatError("?", err))
		return
	}
	s.logger.Info().Str("query", q.String()).Msg("running analysis task")

	res, err := s.Analyzer.Run(s.Ctx, q)
	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		sum := res.Summary
		s.last = &sum
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("analysis failed")
		s.trySend(notifier.FormatError(q.Ticker, err))
		return
	}
	if res.SinkErr != nil {
		s.logger.Warn().Err(res.SinkErr).Msg("some outputs failed")
	}
	if s.StateFile != "" {
		if err := SaveState(s.StateFile, res.Summary); err != nil {
			s.logger.Error().Err(err).Msg("save state")
		}
	}
	s.trySend(notifier.FormatSummary(res.Summary))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/latest":
		sum, ok := s.Last()
		if !ok {
			s.mu.Lock()
			err := s.lastErr
			s.mu.Unlock()
			if err != nil {
				return notifier.FormatError("latest run", err)
			}
			return "No analysis has run yet."
		}
		return notifier.FormatSummary(sum)
	case "/run":
		s.analysisTask()
		return ""
	default:
		return "Available commands:\n• /latest  latest indicator values\n• /run  analyse now\n• /help  this message"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
