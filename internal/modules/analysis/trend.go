package analysis

import (
	"github.com/aristath/fund-sentry/internal/domain"
	"github.com/aristath/fund-sentry/pkg/formulas"
)

// TrendClassifier labels the short-horizon direction of a NAV series using
// the relative order of its 5/10/20-day moving averages.
type TrendClassifier struct{}

// NewTrendClassifier creates a new classifier
func NewTrendClassifier() *TrendClassifier {
	return &TrendClassifier{}
}

// Classify returns the trend report for a series. Fewer than 20 observations
// yields direction "insufficient" with whatever averages were computable.
func (c *TrendClassifier) Classify(series []domain.HistoricalRecord) TrendReport {
	report := TrendReport{Direction: "insufficient"}
	if len(series) == 0 {
		return report
	}

	navs := domain.Navs(series)
	report.Volatility = formulas.Round2(formulas.StdDev(domain.ChangeRates(series)))
	report.Strength = formulas.Round2(formulas.PercentChange(navs[len(navs)-1], navs[0]))

	ma5, ok5 := formulas.SMA(navs, 5)
	ma10, ok10 := formulas.SMA(navs, 10)
	ma20, ok20 := formulas.SMA(navs, 20)
	if ok5 {
		report.MA5 = formulas.Round4(ma5)
	}
	if ok10 {
		report.MA10 = formulas.Round4(ma10)
	}
	if ok20 {
		report.MA20 = formulas.Round4(ma20)
	}
	if !ok5 || !ok10 || !ok20 {
		return report
	}

	switch {
	case ma5 > ma10 && ma10 > ma20:
		report.Direction = "up"
	case ma5 < ma10 && ma10 < ma20:
		report.Direction = "down"
	default:
		report.Direction = "sideways"
	}

	return report
}
