package analysis

import (
	"fmt"

	"github.com/aristath/fund-sentry/internal/domain"
	"github.com/aristath/fund-sentry/pkg/formulas"
)

// ReturnCalculator derives holding-level return figures from a NAV series
// and the holding's cost basis and invested amount.
type ReturnCalculator struct{}

// NewReturnCalculator creates a new calculator
func NewReturnCalculator() *ReturnCalculator {
	return &ReturnCalculator{}
}

// Compute builds a return summary. The latest NAV in the series is the
// valuation basis; an empty series substitutes the cost basis, yielding a
// well-defined zero return. Cost basis and amount must both be positive.
func (c *ReturnCalculator) Compute(series []domain.HistoricalRecord, costBasis, amount float64) (*ReturnSummary, error) {
	if costBasis <= 0 {
		return nil, fmt.Errorf("%w: cost basis must be positive, got %v", domain.ErrInvalidInput, costBasis)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: invested amount must be positive, got %v", domain.ErrInvalidInput, amount)
	}

	currentNav := costBasis
	todayChange := 0.0
	if len(series) > 0 {
		latest := series[len(series)-1]
		currentNav = latest.Nav
		todayChange = latest.ChangeRate
	}

	returnRate := formulas.PercentChange(currentNav, costBasis)
	totalProfit := amount * returnRate / 100
	shares := amount / costBasis
	marketValue := shares * currentNav
	// Today's profit is taken on the invested amount, not the marked-up value
	todayProfit := amount * todayChange / 100

	return &ReturnSummary{
		ReturnRate:  formulas.Round2(returnRate),
		TotalProfit: formulas.Round2(totalProfit),
		TodayChange: formulas.Round2(todayChange),
		TodayProfit: formulas.Round2(todayProfit),
		Shares:      formulas.Round2(shares),
		MarketValue: formulas.Round2(marketValue),
		CostBasis:   formulas.Round4(costBasis),
		CurrentNav:  formulas.Round4(currentNav),
	}, nil
}

// PeriodReturnSince measures the NAV return from the first observation on or
// after the given start date. Returns nil when the series has no observation
// in range.
func PeriodReturnSince(series []domain.HistoricalRecord, startDate string) *PeriodReturn {
	if startDate == "" || len(series) == 0 {
		return nil
	}

	for _, r := range series {
		if r.Date.Format(domain.DateFormat) >= startDate {
			current := series[len(series)-1].Nav
			return &PeriodReturn{
				StartDate:  r.Date.Format(domain.DateFormat),
				StartNav:   formulas.Round4(r.Nav),
				CurrentNav: formulas.Round4(current),
				ReturnRate: formulas.Round2(formulas.PercentChange(current, r.Nav)),
			}
		}
	}

	return nil
}
