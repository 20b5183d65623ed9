// Package recorder persists analysis runs and their computed series.
package recorder

import (
	"context"
	"time"

	"TickerLens/internal/model"
	"TickerLens/internal/series"
)

// RunRecord describes one analysis run.
type RunRecord struct {
	Ticker   string
	Interval model.Interval
	Start    time.Time // first row
	End      time.Time // last row
	Rows     int
	Columns  int
	Note     string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRun(run *RunRecord) (int64, error)
	RecordSeries(runID int64, view series.View) error
	Close() error
}

// RunFromView describes the run behind a table view.
func RunFromView(view series.View) *RunRecord {
	run := &RunRecord{
		Ticker:   view.Ticker(),
		Interval: view.Interval(),
		Rows:     view.Len(),
		Columns:  len(view.Names()),
	}
	if view.Len() > 0 {
		run.Start = view.Time(0)
		run.End = view.Time(view.Len() - 1)
	}
	return run
}

// Sink records a whole view as one run, so a Recorder can sit next to the file exporters.
type Sink struct {
	Recorder Recorder
}

func (s Sink) Name() string { return "recorder" }

func (s Sink) Export(ctx context.Context, view series.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := s.Recorder.RecordRun(RunFromView(view))
	if err != nil {
		return err
	}
	return s.Recorder.RecordSeries(id, view)
}
