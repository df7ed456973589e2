// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/planwise/retirecast/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// IsNegative checks if a value is negative (less than negative tolerance)
func IsNegative(val float64) bool {
	return val < -constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// PercentOf returns pct percent of value, e.g. PercentOf(200, 5) == 10.
func PercentOf(value, pct float64) float64 {
	return value * pct / constants.PercentageMultiplier
}

// GrowByPercent returns value grown by pct percent, e.g. GrowByPercent(200, 5) == 210.
// A zero pct (the default for absent rates) leaves the value unchanged.
func GrowByPercent(value, pct float64) float64 {
	return value + value*pct/constants.PercentageMultiplier
}
