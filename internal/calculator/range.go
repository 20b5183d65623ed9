package calculator

import (
	"fmt"
	"math"

	"TickerLens/internal/series"

	"github.com/guregu/null/v6"
)

// TrueRange returns max(High-Low, |High-prevClose|, |Low-prevClose|) per row.
// The previous-close terms are undefined on the first row, so TR[0] is undefined.
func TrueRange(high, low, closes []float64) (series.Column, error) {
	if len(high) != len(low) || len(high) != len(closes) {
		return nil, fmt.Errorf("true range: mismatched lengths %d/%d/%d", len(high), len(low), len(closes))
	}
	prev := Shift(closes, 1)
	out := series.Undefined(len(high))
	for i := range high {
		hl := series.Value(high[i] - low[i])
		var hpc, lpc null.Float
		if prev[i].Valid {
			hpc = series.Value(math.Abs(high[i] - prev[i].Float64))
			lpc = series.Value(math.Abs(low[i] - prev[i].Float64))
		}
		out[i] = MaxAll(hl, hpc, lpc)
	}
	return out, nil
}

// ATR smooths the true range with center of mass n (alpha 1/(1+n)) and emits nothing
// until n true-range values have been seen. With TR[0] undefined the first value lands on index n.
func ATR(high, low, closes []float64, n int) (series.Column, error) {
	if n <= 0 {
		return nil, ErrInvalidWindow
	}
	tr, err := TrueRange(high, low, closes)
	if err != nil {
		return nil, err
	}
	alpha, err := AlphaFromCom(n)
	if err != nil {
		return nil, err
	}
	return EWM(tr, EWMOptions{Alpha: alpha, MinPeriods: n})
}
