// Package series holds the time-indexed price table and its derived columns.
package series

import (
	"math"

	"github.com/guregu/null/v6"
)

// Column is a derived series aligned 1:1 with the table index.
// An invalid cell is undefined; a valid cell may hold +Inf.
type Column []null.Float

// Undefined returns a column of n undefined cells.
func Undefined(n int) Column {
	return make(Column, n)
}

// Value wraps v, treating NaN as undefined.
func Value(v float64) null.Float {
	if math.IsNaN(v) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// FromFloats converts a plain float slice, NaN cells becoming undefined.
func FromFloats(xs []float64) Column {
	c := make(Column, len(xs))
	for i, x := range xs {
		c[i] = Value(x)
	}
	return c
}

// Floats returns the column as plain floats with NaN for undefined cells.
func (c Column) Floats() []float64 {
	out := make([]float64, len(c))
	for i, v := range c {
		if v.Valid {
			out[i] = v.Float64
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Defined counts the defined cells.
func (c Column) Defined() int {
	n := 0
	for _, v := range c {
		if v.Valid {
			n++
		}
	}
	return n
}

// Last returns the last defined cell and its position, or -1 if none is defined.
func (c Column) Last() (null.Float, int) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Valid {
			return c[i], i
		}
	}
	return null.Float{}, -1
}

// Identical reports whether both columns hold bit-identical cells.
func (c Column) Identical(o Column) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i].Valid != o[i].Valid {
			return false
		}
		if c[i].Valid && math.Float64bits(c[i].Float64) != math.Float64bits(o[i].Float64) {
			return false
		}
	}
	return true
}
