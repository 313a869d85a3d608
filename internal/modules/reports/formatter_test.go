package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/fund-sentry/internal/modules/analysis"
)

func sampleBatch() *Batch {
	return &Batch{
		GeneratedAt: time.Date(2024, 6, 28, 9, 0, 0, 0, time.UTC),
		Holdings: []FundResult{
			{
				FundCode: "161725",
				FundName: "Fund A",
				Record: &analysis.AnalysisRecord{
					FundCode: "161725",
					FundName: "Fund A",
					DataDate: "2024-06-28",
					IsToday:  true,
					Returns: &analysis.ReturnSummary{
						ReturnRate:  5,
						TotalProfit: 500,
						TodayChange: 0.8,
						TodayProfit: 80,
						MarketValue: 10500,
						CostBasis:   1,
						CurrentNav:  1.05,
					},
					MovingAverages: analysis.MovingAverageSet{
						CurrentNav: 1.05,
						Averages:   map[string]float64{"ma20": 1.02, "ma250": 0.98},
						Deviations: map[string]float64{"ma20": 2.94, "ma250": 7.14},
					},
					Position: analysis.PositionAssessment{
						Score:          -1,
						Signal:         analysis.SignalSell,
						Position:       analysis.PositionMediumHigh,
						Recommendation: "avoid adding",
					},
					Trend:      analysis.TrendReport{Direction: "up", Strength: 4.2, Volatility: 0.6},
					Prediction: []analysis.PredictionPoint{{Day: 1, PredictedNav: 1.051, PredictedChange: 0.1}, {Day: 5, PredictedNav: 1.06, PredictedChange: 0.95}},
				},
			},
			{FundCode: "999999", FundName: "Broken", Error: "no historical data"},
		},
		Watchlist: []FundResult{
			{
				FundCode: "110011",
				FundName: "Watch C",
				Record: &analysis.AnalysisRecord{
					FundCode:       "110011",
					DataDate:       "2024-06-27",
					MovingAverages: analysis.MovingAverageSet{CurrentNav: 2.5},
					Position:       analysis.PositionAssessment{Signal: analysis.SignalHold, Recommendation: "no action"},
					Trend:          analysis.TrendReport{Direction: "insufficient"},
				},
			},
		},
		Totals:   Totals{Invested: 10000, MarketValue: 10500, TotalProfit: 500, TodayProfit: 84, ReturnRate: 5},
		Failures: 1,
	}
}

func TestFormatBatch(t *testing.T) {
	f := NewFormatter()
	batch := sampleBatch()

	assert.Equal(t, "Fund Analysis Report 2024-06-28", f.Title(batch))

	body := f.Format(batch)

	assert.Contains(t, body, "## Holdings")
	assert.Contains(t, body, "### Fund A (161725)")
	assert.Contains(t, body, "Today's change: +0.80%")
	assert.Contains(t, body, "Total return: +5.00% (+500.00)")
	assert.Contains(t, body, "ma20 1.0200 (+2.94%)")
	assert.Contains(t, body, "Signal: sell (score -1)")
	assert.Contains(t, body, "Outlook: 1.0600 in 5 day(s)")

	assert.Contains(t, body, "Analysis unavailable: no historical data")
	assert.Contains(t, body, "1 fund(s) could not be analyzed")

	assert.Contains(t, body, "## Watchlist")
	assert.Contains(t, body, "### Watch C (110011)")
	assert.Contains(t, body, "NAV: 2.5000 (as of 2024-06-27)")

	assert.Contains(t, body, riskFooter)
	assert.NotContains(t, body, firstRunDisclaimer)
}

func TestFormatStaleDataLabel(t *testing.T) {
	batch := sampleBatch()
	batch.Holdings[0].Record.IsToday = false

	body := NewFormatter().Format(batch)
	assert.Contains(t, body, "Latest change (as of 2024-06-28): +0.80%")
}

func TestFormatFirstRunDisclaimer(t *testing.T) {
	batch := sampleBatch()
	batch.FirstRun = true

	body := NewFormatter().Format(batch)
	assert.Contains(t, body, firstRunDisclaimer)
}
