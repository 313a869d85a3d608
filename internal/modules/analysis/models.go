package analysis

import (
	"time"

	"github.com/aristath/fund-sentry/internal/domain"
)

// Signal is a discrete buy/sell recommendation bucket
type Signal string

const (
	SignalStrongBuy  Signal = "strong_buy"
	SignalBuy        Signal = "buy"
	SignalHold       Signal = "hold"
	SignalSell       Signal = "sell"
	SignalStrongSell Signal = "strong_sell"
)

// PositionLevel describes where the current NAV sits relative to its
// moving averages
type PositionLevel string

const (
	PositionLow        PositionLevel = "low"
	PositionMediumLow  PositionLevel = "medium_low"
	PositionMedium     PositionLevel = "medium"
	PositionMediumHigh PositionLevel = "medium_high"
	PositionHigh       PositionLevel = "high"
)

// MovingAverageSet holds per-window averages and the deviation of the
// current NAV from each. Windows without enough history are absent from
// both maps — a partial window is never substituted.
type MovingAverageSet struct {
	CurrentNav float64            `json:"current_nav"`
	Averages   map[string]float64 `json:"averages"`
	Deviations map[string]float64 `json:"deviations"`
}

// Has reports whether a window was computable
func (s MovingAverageSet) Has(window string) bool {
	_, ok := s.Averages[window]
	return ok
}

// PositionAssessment is the scored buy/sell heuristic with its explanation
type PositionAssessment struct {
	Score          int           `json:"score"` // clamped to [-5, 5]
	Position       PositionLevel `json:"position"`
	Signal         Signal        `json:"signal"`
	Recommendation string        `json:"recommendation"`
	Narrative      []string      `json:"narrative"`
	Detail         string        `json:"detail"` // one-line summary, two most significant hints
}

// ReturnSummary holds realized return figures for a holding.
// Monetary figures are rounded to 2 decimals, NAV to 4.
type ReturnSummary struct {
	ReturnRate  float64 `json:"return_rate"`  // %
	TotalProfit float64 `json:"total_profit"` // currency
	TodayChange float64 `json:"today_change"` // %, sourced from the latest record
	TodayProfit float64 `json:"today_profit"` // currency
	Shares      float64 `json:"shares"`
	MarketValue float64 `json:"market_value"`
	CostBasis   float64 `json:"cost_basis"`
	CurrentNav  float64 `json:"current_nav"`
}

// PredictionPoint is one forward-looking NAV estimate
type PredictionPoint struct {
	Day             int     `json:"day"` // offset from the latest observation, starting at 1
	PredictedNav    float64 `json:"predicted_nav"`
	PredictedChange float64 `json:"predicted_change"` // % vs latest observed NAV
}

// TrendReport classifies the short-horizon direction of a series
type TrendReport struct {
	Direction  string  `json:"direction"` // up / down / sideways / insufficient
	Strength   float64 `json:"strength"`  // total % change over the series
	Volatility float64 `json:"volatility"`
	MA5        float64 `json:"ma5,omitempty"`
	MA10       float64 `json:"ma10,omitempty"`
	MA20       float64 `json:"ma20,omitempty"`
}

// PeriodReturn is the NAV return measured from an observation start date
type PeriodReturn struct {
	StartDate  string  `json:"start_date"`
	StartNav   float64 `json:"start_nav"`
	CurrentNav float64 `json:"current_nav"`
	ReturnRate float64 `json:"return_rate"` // %
}

// AnalysisRecord aggregates one full analysis pass for a fund. It is
// assembled once per invocation and owned by the caller thereafter.
type AnalysisRecord struct {
	FundCode       string                   `json:"fund_code"`
	FundName       string                   `json:"fund_name"`
	Returns        *ReturnSummary           `json:"returns,omitempty"` // nil for watch-only funds
	Trend          TrendReport              `json:"trend"`
	Prediction     []PredictionPoint        `json:"prediction,omitempty"`
	MovingAverages MovingAverageSet         `json:"moving_averages"`
	Position       PositionAssessment       `json:"position"`
	PeriodReturn   *PeriodReturn            `json:"period_return,omitempty"`
	Auxiliary      *domain.AuxiliarySignals `json:"auxiliary,omitempty"`
	IsToday        bool                     `json:"is_today"` // latest data is an official same-day close
	DataDate       string                   `json:"data_date"`
	DataPoints     int                      `json:"data_points"`
	GeneratedAt    time.Time                `json:"generated_at"`
}
