package main

import (
	"testing"
	"time"

	"TickerLens/internal/config"
	"TickerLens/internal/model"
)

func TestEnableIndicators(t *testing.T) {
	tests := []struct {
		list                 string
		macd, atr, boll, rsi bool
		wantErr              bool
	}{
		{"all", true, true, true, true, false},
		{"rsi", false, false, false, true, false},
		{" MACD , boll_band", true, false, true, false, false},
		{"", false, false, false, false, false},
		{"vwap", false, false, false, false, true},
	}
	for _, tt := range tests {
		cfg := &config.Config{}
		cfg.Indicators.ATR.Enabled = true
		err := enableIndicators(cfg, tt.list)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err=%v wantErr=%v", tt.list, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		ind := cfg.Indicators
		if ind.MACD.Enabled != tt.macd || ind.ATR.Enabled != tt.atr || ind.Boll.Enabled != tt.boll || ind.RSI.Enabled != tt.rsi {
			t.Errorf("%q: got %+v", tt.list, ind)
		}
	}
}

func TestRollingQuery(t *testing.T) {
	cfg := &config.Config{}
	cfg.Analysis.Ticker = "TSLA"
	cfg.Analysis.Start = "2018-01-01"
	cfg.Analysis.End = "2022-08-01"
	cfg.Analysis.Interval = "1d"

	q, err := rollingQuery(cfg, false)()
	if err != nil {
		t.Fatal(err)
	}
	if q.End.Format(model.DateLayout) != "2022-08-01" {
		t.Errorf("fixed end moved: %v", q.End)
	}

	q, err = rollingQuery(cfg, true)()
	if err != nil {
		t.Fatal(err)
	}
	if !q.End.After(time.Now().UTC()) {
		t.Errorf("rolling end %v should be after now", q.End)
	}
}
