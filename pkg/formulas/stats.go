package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// PercentChange returns the percentage change from base to value.
// A zero base yields 0 so downstream arithmetic stays defined.
func PercentChange(value, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (value - base) / base * 100
}

// Round2 rounds to 2 decimal places (percentages and currency amounts)
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to 4 decimal places (net asset values)
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
