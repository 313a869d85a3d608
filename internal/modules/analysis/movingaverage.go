package analysis

import (
	"github.com/aristath/fund-sentry/internal/domain"
	"github.com/aristath/fund-sentry/pkg/formulas"
)

// maWindows are the long-horizon windows the position scorer reads,
// ordered shortest to longest
var maWindows = []struct {
	label  string
	length int
}{
	{"ma20", 20},
	{"ma60", 60},
	{"ma250", 250},
	{"ma500", 500},
}

// MovingAverageCalculator computes fixed-window simple moving averages of a
// NAV series and the deviation of the current NAV from each.
type MovingAverageCalculator struct{}

// NewMovingAverageCalculator creates a new calculator
func NewMovingAverageCalculator() *MovingAverageCalculator {
	return &MovingAverageCalculator{}
}

// Compute returns the moving-average set for a series. A window appears only
// when the series has at least that many observations. An empty series yields
// an empty (but non-nil) set.
func (c *MovingAverageCalculator) Compute(series []domain.HistoricalRecord) MovingAverageSet {
	set := MovingAverageSet{
		Averages:   make(map[string]float64),
		Deviations: make(map[string]float64),
	}
	if len(series) == 0 {
		return set
	}

	navs := domain.Navs(series)
	set.CurrentNav = navs[len(navs)-1]

	for _, w := range maWindows {
		avg, ok := formulas.SMA(navs, w.length)
		if !ok {
			continue
		}
		set.Averages[w.label] = formulas.Round4(avg)
		set.Deviations[w.label] = formulas.Round2(formulas.PercentChange(set.CurrentNav, avg))
	}

	return set
}
