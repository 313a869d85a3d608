package formulas

import (
	talib "github.com/markcheno/go-talib"
)

// SMA returns the simple moving average of the last `period` values.
// Returns 0 and false when the series is shorter than the period — a partial
// window is never averaged.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	out := talib.Sma(values, period)
	return out[len(out)-1], true
}

// TrailingMean averages values[max(0,i-window+1)..i] for each index i.
// Used to smooth short prediction sequences with an expanding head.
func TrailingMean(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	smoothed := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		smoothed[i] = Mean(values[start : i+1])
	}
	return smoothed
}
