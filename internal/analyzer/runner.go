// Package analyzer runs the indicator engine for a query and hands the result to its sinks.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TickerLens/internal/export"
	"TickerLens/internal/indicator"
	"TickerLens/internal/metrics"
	"TickerLens/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Result is the outcome of one analysis run.
type Result struct {
	Engine   *indicator.Engine
	Summary  Summary
	Duration time.Duration
	// SinkErr joins the failures of exporters; the analysis itself succeeded.
	SinkErr error
}

// Runner fetches, analyses and exports one query at a time.
type Runner struct {
	Source    indicator.Source
	Spec      indicator.Spec
	Exporters []export.Exporter
	Metrics   *metrics.Metrics

	logger zerolog.Logger
}

func NewRunner(src indicator.Source, spec indicator.Spec, m *metrics.Metrics, exporters ...export.Exporter) *Runner {
	return &Runner{
		Source:    src,
		Spec:      spec,
		Exporters: exporters,
		Metrics:   m,
		logger:    log.With().Str("component", "analyzer").Logger(),
	}
}

// Run builds the engine, applies the configured indicators and exports the table.
// Exporter failures are logged and returned in Result.SinkErr without failing the run.
func (r *Runner) Run(ctx context.Context, q model.Query) (res *Result, err error) {
	began := time.Now()
	defer func() { r.Metrics.RunFinished(err) }()

	eng, err := indicator.NewFromQuery(ctx, r.Source, q)
	if err != nil {
		var due *model.DataUnavailableError
		if errors.As(err, &due) {
			r.logger.Warn().Str("query", q.String()).Msg("no data for query")
		}
		return nil, err
	}
	if err := eng.Apply(r.Spec, r.Metrics.ObserveIndicator); err != nil {
		return nil, fmt.Errorf("analyse %s: %w", q.Ticker, err)
	}
	view := eng.View()
	r.Metrics.SetRows(q.Ticker, view.Len())

	var sinkErrs []error
	for _, ex := range r.Exporters {
		if err := ex.Export(ctx, view); err != nil {
			r.logger.Error().Err(err).Str("exporter", ex.Name()).Msg("export failed")
			sinkErrs = append(sinkErrs, fmt.Errorf("%s: %w", ex.Name(), err))
		}
	}

	res = &Result{
		Engine:   eng,
		Summary:  Summarize(view),
		Duration: time.Since(began),
		SinkErr:  errors.Join(sinkErrs...),
	}
	r.logger.Info().
		Str("ticker", q.Ticker).
		Int("rows", view.Len()).
		Int("columns", len(view.Names())).
		Dur("took", res.Duration).
		Msg("analysis complete")
	return res, nil
}
