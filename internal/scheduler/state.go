package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"TickerLens/internal/analyzer"
	"TickerLens/internal/model"

	"github.com/guregu/null/v6"
)

// savedSummary is the on-disk form of the last summary. Values are strings so +Inf survives JSON.
type savedSummary struct {
	Ticker      string       `json:"ticker"`
	Interval    string       `json:"interval"`
	Rows        int          `json:"rows"`
	First       time.Time    `json:"first"`
	Last        time.Time    `json:"last"`
	Latest      []savedValue `json:"latest"`
	GeneratedAt time.Time    `json:"generated_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type savedValue struct {
	Column string    `json:"column"`
	Value  string    `json:"value,omitempty"` // empty when undefined
	Time   time.Time `json:"time"`
}

// LoadState reads the last summary from a JSON file. Returns nil if the file doesn't exist.
func LoadState(filePath string) (*analyzer.Summary, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var saved savedSummary
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, err
	}

	s := &analyzer.Summary{
		Ticker:      saved.Ticker,
		Interval:    model.Interval(saved.Interval),
		Rows:        saved.Rows,
		First:       saved.First,
		Last:        saved.Last,
		GeneratedAt: saved.GeneratedAt,
	}
	for _, v := range saved.Latest {
		l := analyzer.Latest{Column: v.Column, Time: v.Time}
		if v.Value != "" {
			f, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return nil, err
			}
			l.Value = null.FloatFrom(f)
		}
		s.Latest = append(s.Latest, l)
	}
	return s, nil
}

// SaveState writes the summary to a JSON file.
func SaveState(filePath string, s analyzer.Summary) error {
	saved := savedSummary{
		Ticker:      s.Ticker,
		Interval:    string(s.Interval),
		Rows:        s.Rows,
		First:       s.First,
		Last:        s.Last,
		GeneratedAt: s.GeneratedAt,
		UpdatedAt:   time.Now(),
	}
	for _, l := range s.Latest {
		v := savedValue{Column: l.Column, Time: l.Time}
		if l.Value.Valid {
			v.Value = strconv.FormatFloat(l.Value.Float64, 'g', -1, 64)
		}
		saved.Latest = append(saved.Latest, v)
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
