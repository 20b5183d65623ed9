package analyzer

import (
	"time"

	"TickerLens/internal/model"
	"TickerLens/internal/series"

	"github.com/guregu/null/v6"
)

// Latest is the most recent defined value of a column.
type Latest struct {
	Column string
	Value  null.Float // invalid when the column has no defined cell
	Time   time.Time
}

// Summary condenses an analysed table for notifications and logs.
type Summary struct {
	Ticker      string
	Interval    model.Interval
	Rows        int
	First       time.Time
	Last        time.Time
	Latest      []Latest // table column order
	GeneratedAt time.Time
}

// Summarize reads the latest defined value of every column of view.
func Summarize(view series.View) Summary {
	s := Summary{
		Ticker:      view.Ticker(),
		Interval:    view.Interval(),
		Rows:        view.Len(),
		GeneratedAt: time.Now(),
	}
	if view.Len() == 0 {
		return s
	}
	s.First = view.Time(0)
	s.Last = view.Time(view.Len() - 1)
	for _, name := range view.Names() {
		col, _ := view.Column(name)
		v, i := col.Last()
		l := Latest{Column: name, Value: v}
		if i >= 0 {
			l.Time = view.Time(i)
		}
		s.Latest = append(s.Latest, l)
	}
	return s
}

// Value returns the latest defined value of the named column.
func (s Summary) Value(name string) (null.Float, bool) {
	for _, l := range s.Latest {
		if l.Column == name {
			return l.Value, true
		}
	}
	return null.Float{}, false
}
