// Package mathutil provides small numeric helpers shared across the engine.
package mathutil

import (
	"math"

	"github.com/lenderkit/covsim/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Schedule rows and summary figures are rounded at the edges only; internal
// accumulation stays at full float precision.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a currency amount is effectively zero (within tolerance).
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a currency amount is positive beyond tolerance.
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// WithinTolerance checks if two values agree within a specified tolerance.
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values.
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts val to the closed interval [lo, hi]. Shocked rate and
// margin drivers are clamped so stress scenarios cannot push them outside
// their economically meaningful ranges.
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// CalculatePercentage calculates what percentage value is of total,
// returning 0 when total is 0.
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}
