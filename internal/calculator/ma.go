package calculator

import (
	"errors"

	"TickerLens/internal/series"

	"gonum.org/v1/gonum/stat"
)

// ErrInvalidWindow is returned for a non-positive window, span or smoothing parameter.
var ErrInvalidWindow = errors.New("window must be positive")

// RollingMean returns the mean of the trailing n values ending at each position.
// The first n-1 cells are undefined, as is any window holding a NaN.
func RollingMean(xs []float64, n int) (series.Column, error) {
	if n <= 0 {
		return nil, ErrInvalidWindow
	}
	out := series.Undefined(len(xs))
	for i := n - 1; i < len(xs); i++ {
		out[i] = series.Value(stat.Mean(xs[i-n+1:i+1], nil))
	}
	return out, nil
}

// RollingPopStd returns the population (ddof=0) standard deviation of the trailing n values.
func RollingPopStd(xs []float64, n int) (series.Column, error) {
	if n <= 0 {
		return nil, ErrInvalidWindow
	}
	out := series.Undefined(len(xs))
	for i := n - 1; i < len(xs); i++ {
		// one observation has no spread; NaN stays NaN
		if n == 1 {
			out[i] = series.Value(xs[i] - xs[i])
			continue
		}
		_, std := stat.PopMeanStdDev(xs[i-n+1:i+1], nil)
		out[i] = series.Value(std)
	}
	return out, nil
}
