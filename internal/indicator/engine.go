// Package indicator appends technical-analysis columns to a single ticker's price table.
package indicator

import (
	"context"
	"fmt"

	"TickerLens/internal/calculator"
	"TickerLens/internal/model"
	"TickerLens/internal/series"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Column names written by the engine.
const (
	ColPrevGrowth = "prev growth"
	ColNextGrowth = "next growth"
	ColIncreases  = "Increases"
	ColMA30       = "30 MA"
	ColMA10       = "10 MA"
	ColMACD       = "MACD"
	ColSignal     = "signal"
	ColATR        = "ATR"
	ColMB         = "MB"
	ColUB         = "UB"
	ColLB         = "LB"
	ColBBWidth    = "BB_Width"
	ColRSI        = "rsi"
)

// Default indicator parameters.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
	DefaultATRPeriod  = 14
	DefaultBollPeriod = 14
	DefaultRSIPeriod  = 14

	bollWidth = 2.0
)

// ErrInvalidWindow is returned when an indicator is asked for a non-positive window.
var ErrInvalidWindow = calculator.ErrInvalidWindow

// Source supplies the price history for a query.
type Source interface {
	FetchBars(ctx context.Context, q model.Query) ([]model.OHLCV, error)
}

// Engine owns one ticker's price table and writes indicator columns onto it.
// It is not safe for concurrent use.
type Engine struct {
	query  model.Query
	table  *series.Table
	logger zerolog.Logger
}

// New validates the request, fetches the series once and runs the baseline analysis.
// The interval is checked before any fetch is attempted.
func New(ctx context.Context, src Source, ticker, start, end, interval string) (*Engine, error) {
	q, err := model.NewQuery(ticker, start, end, interval)
	if err != nil {
		return nil, err
	}
	return NewFromQuery(ctx, src, q)
}

// NewFromQuery is New for an already validated query.
func NewFromQuery(ctx context.Context, src Source, q model.Query) (*Engine, error) {
	if _, err := model.ParseInterval(string(q.Interval)); err != nil {
		return nil, err
	}
	bars, err := src.FetchBars(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q, err)
	}
	if len(bars) == 0 {
		return nil, &model.DataUnavailableError{Query: q}
	}
	return newEngine(q, bars), nil
}

// FromBars builds an engine over an injected series, trusted to be ascending and unique.
func FromBars(ticker string, interval model.Interval, bars []model.OHLCV) (*Engine, error) {
	if _, err := model.ParseInterval(string(interval)); err != nil {
		return nil, err
	}
	q := model.Query{Ticker: ticker, Interval: interval}
	if len(bars) == 0 {
		return nil, &model.DataUnavailableError{Query: q}
	}
	q.Start = bars[0].Time
	q.End = bars[len(bars)-1].Time
	return newEngine(q, bars), nil
}

func newEngine(q model.Query, bars []model.OHLCV) *Engine {
	e := &Engine{
		query:  q,
		table:  series.NewTable(q.Ticker, q.Interval, bars),
		logger: log.With().Str("component", "indicator").Str("ticker", q.Ticker).Logger(),
	}
	e.baseline()
	e.logger.Debug().Int("rows", e.table.Len()).Msg("baseline analysis done")
	return e
}

// Query returns the query the series was loaded for.
func (e *Engine) Query() model.Query { return e.query }

// Ticker returns the instrument identifier.
func (e *Engine) Ticker() string { return e.query.Ticker }

// View exposes the table read-only.
func (e *Engine) View() series.View { return e.table }

// baseline writes growth ratios, the direction label and the 30/10 period moving averages.
func (e *Engine) baseline() {
	closes := e.table.Close
	cur := series.FromFloats(closes)

	e.table.Set(ColPrevGrowth, calculator.Ratio(cur, calculator.Shift(closes, 1)))
	next := calculator.Ratio(calculator.Shift(closes, -1), cur)
	e.table.Set(ColNextGrowth, next)

	// The last row has no next close and is labelled 0 like any non-increasing row.
	inc := make(series.Column, len(next))
	for i, g := range next {
		if g.Valid && g.Float64 > 1 {
			inc[i] = series.Value(1)
		} else {
			inc[i] = series.Value(0)
		}
	}
	e.table.Set(ColIncreases, inc)

	// windows are constant and positive, errors cannot occur
	ma30, _ := calculator.RollingMean(closes, 30)
	ma10, _ := calculator.RollingMean(closes, 10)
	e.table.Set(ColMA30, ma30)
	e.table.Set(ColMA10, ma10)
}

// MACD writes "MACD" (fast minus slow EWM of Close, by span) and "signal" (EWM of MACD).
func (e *Engine) MACD(fast, slow, signal int) error {
	macd, sig, err := calculator.CalculateMACD(e.table.Close, fast, slow, signal)
	if err != nil {
		return fmt.Errorf("MACD(%d,%d,%d): %w", fast, slow, signal, err)
	}
	e.table.Set(ColMACD, macd)
	e.table.Set(ColSignal, sig)
	return nil
}

// ATR writes the average true range smoothed with center of mass n.
func (e *Engine) ATR(n int) error {
	atr, err := calculator.ATR(e.table.High, e.table.Low, e.table.Close, n)
	if err != nil {
		return fmt.Errorf("ATR(%d): %w", n, err)
	}
	e.table.Set(ColATR, atr)
	return nil
}

// BollBand writes the n-period Bollinger bands MB, UB, LB and BB_Width.
func (e *Engine) BollBand(n int) error {
	b, err := calculator.CalculateBollinger(e.table.Close, n, bollWidth)
	if err != nil {
		return fmt.Errorf("Boll_Band(%d): %w", n, err)
	}
	e.table.Set(ColMB, b.Middle)
	e.table.Set(ColUB, b.Upper)
	e.table.Set(ColLB, b.Lower)
	e.table.Set(ColBBWidth, b.Width)
	return nil
}

// RSI writes the n-period relative strength index.
func (e *Engine) RSI(n int) error {
	res, err := calculator.CalculateRSI(e.table.Close, n)
	if err != nil {
		return fmt.Errorf("RSI(%d): %w", n, err)
	}
	e.table.Set(ColRSI, res.RSI)
	return nil
}
