package calculator

import "TickerLens/internal/series"

// Bands holds Bollinger middle, upper and lower bands and the band width.
type Bands struct {
	Middle series.Column
	Upper  series.Column
	Lower  series.Column
	Width  series.Column
}

// CalculateBollinger builds bands k population standard deviations around the n-period mean.
func CalculateBollinger(closes []float64, n int, k float64) (*Bands, error) {
	mb, err := RollingMean(closes, n)
	if err != nil {
		return nil, err
	}
	sd, err := RollingPopStd(closes, n)
	if err != nil {
		return nil, err
	}

	b := &Bands{
		Middle: mb,
		Upper:  series.Undefined(len(closes)),
		Lower:  series.Undefined(len(closes)),
		Width:  series.Undefined(len(closes)),
	}
	for i := range closes {
		if !mb[i].Valid || !sd[i].Valid {
			continue
		}
		ub := mb[i].Float64 + k*sd[i].Float64
		lb := mb[i].Float64 - k*sd[i].Float64
		b.Upper[i] = series.Value(ub)
		b.Lower[i] = series.Value(lb)
		b.Width[i] = series.Value(ub - lb)
	}
	return b, nil
}
