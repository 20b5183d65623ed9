package calculator

import "TickerLens/internal/series"

// EWMOptions configures an exponentially weighted mean.
type EWMOptions struct {
	// Alpha is the smoothing factor in (0, 1].
	Alpha float64
	// MinPeriods is the number of defined observations required before a value is emitted.
	// Values below 1 are treated as 1.
	MinPeriods int
}

// AlphaFromSpan converts a span to a smoothing factor: 2/(span+1).
func AlphaFromSpan(span int) (float64, error) {
	if span < 1 {
		return 0, ErrInvalidWindow
	}
	return 2.0 / (float64(span) + 1.0), nil
}

// AlphaFromCom converts a center of mass to a smoothing factor: 1/(1+com).
func AlphaFromCom(com int) (float64, error) {
	if com < 0 {
		return 0, ErrInvalidWindow
	}
	return 1.0 / (1.0 + float64(com)), nil
}

// EWM computes the adjusted exponentially weighted mean of xs.
//
// y[i] = sum(w_k * x[i-k]) / sum(w_k) with w_k = (1-alpha)^k, summed over the defined
// observations up to i. Lags are counted by position, so an undefined observation adds
// nothing but still ages the older weights. y[0] equals x[0] when x[0] is defined.
func EWM(xs series.Column, opts EWMOptions) (series.Column, error) {
	if !(opts.Alpha > 0 && opts.Alpha <= 1) {
		return nil, ErrInvalidWindow
	}
	minPeriods := opts.MinPeriods
	if minPeriods < 1 {
		minPeriods = 1
	}

	decay := 1 - opts.Alpha
	out := series.Undefined(len(xs))
	var num, den float64
	seen := 0
	for i, x := range xs {
		num *= decay
		den *= decay
		if x.Valid {
			num += x.Float64
			den++
			seen++
		}
		if seen >= minPeriods && den > 0 {
			out[i] = series.Value(num / den)
		}
	}
	return out, nil
}

// EWMFloats is EWM over plain floats, NaN marking undefined observations.
func EWMFloats(xs []float64, opts EWMOptions) (series.Column, error) {
	return EWM(series.FromFloats(xs), opts)
}
