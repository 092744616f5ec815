package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// Ratio is a percentage that may be undefined (zero denominator).
type Ratio struct {
	Value   decimal.Decimal
	Defined bool
}

// Percent returns the value, or ErrDivisionUndefined when the ratio has no
// defined value.
func (r Ratio) Percent() (decimal.Decimal, error) {
	if !r.Defined {
		return decimal.Zero, ErrDivisionUndefined
	}
	return r.Value, nil
}

// Float64 returns NaN for an undefined ratio.
func (r Ratio) Float64() float64 {
	if !r.Defined {
		return math.NaN()
	}
	f, _ := r.Value.Float64()
	return f
}

// Metrics are the summary values shown next to the top depositors table.
type Metrics struct {
	TotalTop10    decimal.Decimal
	TotalAll      decimal.Decimal
	Concentration Ratio
	// Skipped counts amounts left out of the sums because they were malformed.
	Skipped int
}
