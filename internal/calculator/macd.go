package calculator

import "TickerLens/internal/series"

// CalculateMACD returns the MACD line (fast EWM minus slow EWM of closes, by span) and its
// signal line (EWM of the MACD line with span signal). Both are defined from the first row.
func CalculateMACD(closes []float64, fast, slow, signal int) (macd, sig series.Column, err error) {
	fastAlpha, err := AlphaFromSpan(fast)
	if err != nil {
		return nil, nil, err
	}
	slowAlpha, err := AlphaFromSpan(slow)
	if err != nil {
		return nil, nil, err
	}
	sigAlpha, err := AlphaFromSpan(signal)
	if err != nil {
		return nil, nil, err
	}

	fastEWM, err := EWMFloats(closes, EWMOptions{Alpha: fastAlpha})
	if err != nil {
		return nil, nil, err
	}
	slowEWM, err := EWMFloats(closes, EWMOptions{Alpha: slowAlpha})
	if err != nil {
		return nil, nil, err
	}

	macd = series.Undefined(len(closes))
	for i := range closes {
		if fastEWM[i].Valid && slowEWM[i].Valid {
			macd[i] = series.Value(fastEWM[i].Float64 - slowEWM[i].Float64)
		}
	}
	sig, err = EWM(macd, EWMOptions{Alpha: sigAlpha})
	if err != nil {
		return nil, nil, err
	}
	return macd, sig, nil
}
