package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// LinearFit holds the coefficients of an ordinary-least-squares line y = Alpha + Beta*x
type LinearFit struct {
	Alpha float64
	Beta  float64
}

// FitLine fits an OLS line through (x, y). Requires at least 2 distinct x
// values; returns false otherwise rather than producing a degenerate fit.
func FitLine(x, y []float64) (LinearFit, bool) {
	if len(x) < 2 || len(x) != len(y) {
		return LinearFit{}, false
	}

	distinct := false
	for i := 1; i < len(x); i++ {
		if x[i] != x[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return LinearFit{}, false
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return LinearFit{Alpha: alpha, Beta: beta}, true
}

// At evaluates the fitted line at x
func (f LinearFit) At(x float64) float64 {
	return f.Alpha + f.Beta*x
}
