package calculator

import (
	"math"

	"TickerLens/internal/series"

	"github.com/guregu/null/v6"
)

// Shift moves xs by k positions: k > 0 lags (x[i-k]), k < 0 leads (x[i+|k|]).
// Cells with no source position are undefined.
func Shift(xs []float64, k int) series.Column {
	out := series.Undefined(len(xs))
	for i := range xs {
		j := i - k
		if j >= 0 && j < len(xs) {
			out[i] = series.Value(xs[j])
		}
	}
	return out
}

// Ratio divides a by b cell by cell. Division by zero yields ±Inf; 0/0 is undefined.
func Ratio(a, b series.Column) series.Column {
	out := series.Undefined(len(a))
	for i := range a {
		if i < len(b) && a[i].Valid && b[i].Valid {
			out[i] = series.Value(a[i].Float64 / b[i].Float64)
		}
	}
	return out
}

// MaxAll returns the largest operand. Any undefined or NaN operand makes the result undefined.
func MaxAll(vals ...null.Float) null.Float {
	var best null.Float
	for _, v := range vals {
		if !v.Valid || math.IsNaN(v.Float64) {
			return null.Float{}
		}
		if !best.Valid || v.Float64 > best.Float64 {
			best = v
		}
	}
	return best
}
