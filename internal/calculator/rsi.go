package calculator

import (
	"math"

	"TickerLens/internal/series"
)

// RSIResult holds the relative strength index and its intermediate columns.
type RSIResult struct {
	AvgGain series.Column
	AvgLoss series.Column
	RS      series.Column
	RSI     series.Column
}

// CalculateRSI computes the RSI of closes with smoothing factor 1/n.
//
// Gains and losses come from the close-to-close change; an undefined change (first row)
// counts as neither. Averages need n observations before they are defined.
// rs is +Inf when the average loss is 0 and the average gain positive, undefined when both
// are 0; rsi = 100 - 100/(1+rs), which is 100 for an infinite rs.
func CalculateRSI(closes []float64, n int) (*RSIResult, error) {
	if n <= 0 {
		return nil, ErrInvalidWindow
	}

	prev := Shift(closes, 1)
	gain := make([]float64, len(closes))
	loss := make([]float64, len(closes))
	for i, c := range closes {
		if !prev[i].Valid || math.IsNaN(c) {
			continue
		}
		change := c - prev[i].Float64
		if change >= 0 {
			gain[i] = change
		} else {
			loss[i] = -change
		}
	}

	opts := EWMOptions{Alpha: 1.0 / float64(n), MinPeriods: n}
	avgGain, err := EWMFloats(gain, opts)
	if err != nil {
		return nil, err
	}
	avgLoss, err := EWMFloats(loss, opts)
	if err != nil {
		return nil, err
	}

	rs := Ratio(avgGain, avgLoss)
	rsi := series.Undefined(len(closes))
	for i, v := range rs {
		if !v.Valid {
			continue
		}
		if math.IsInf(v.Float64, 1) {
			rsi[i] = series.Value(100)
			continue
		}
		rsi[i] = series.Value(100 - 100/(1+v.Float64))
	}

	return &RSIResult{AvgGain: avgGain, AvgLoss: avgLoss, RS: rs, RSI: rsi}, nil
}
