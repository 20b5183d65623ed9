package indicator

import (
	"fmt"
	"time"
)

// Spec selects which optional indicators Apply computes and with which parameters.
type Spec struct {
	MACD       bool
	MACDFast   int
	MACDSlow   int
	MACDSignal int

	ATR       bool
	ATRPeriod int

	Boll       bool
	BollPeriod int

	RSI       bool
	RSIPeriod int
}

// DefaultSpec enables every indicator with its default parameters.
func DefaultSpec() Spec {
	return Spec{
		MACD: true, MACDFast: DefaultMACDFast, MACDSlow: DefaultMACDSlow, MACDSignal: DefaultMACDSignal,
		ATR: true, ATRPeriod: DefaultATRPeriod,
		Boll: true, BollPeriod: DefaultBollPeriod,
		RSI: true, RSIPeriod: DefaultRSIPeriod,
	}
}

// ObserveFunc receives the wall time spent on each indicator.
type ObserveFunc func(name string, elapsed time.Duration)

// Apply runs the enabled indicators in a fixed order: MACD, ATR, Boll_Band, RSI.
// It stops at the first failure; columns written before it are kept.
func (e *Engine) Apply(s Spec, observe ObserveFunc) error {
	steps := []struct {
		name    string
		enabled bool
		run     func() error
	}{
		{"MACD", s.MACD, func() error { return e.MACD(s.MACDFast, s.MACDSlow, s.MACDSignal) }},
		{"ATR", s.ATR, func() error { return e.ATR(s.ATRPeriod) }},
		{"Boll_Band", s.Boll, func() error { return e.BollBand(s.BollPeriod) }},
		{"RSI", s.RSI, func() error { return e.RSI(s.RSIPeriod) }},
	}
	for _, st := range steps {
		if !st.enabled {
			continue
		}
		began := time.Now()
		if err := st.run(); err != nil {
			return fmt.Errorf("apply %s: %w", st.name, err)
		}
		if observe != nil {
			observe(st.name, time.Since(began))
		}
		e.logger.Debug().Str("indicator", st.name).Msg("indicator computed")
	}
	return nil
}
