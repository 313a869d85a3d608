package analysis

import (
	"fmt"

	"github.com/aristath/fund-sentry/internal/domain"
	"github.com/aristath/fund-sentry/pkg/formulas"
)

const (
	// minPredictionHistory is the fewest observations a fit will accept
	minPredictionHistory = 5
	// fitWindow caps how many trailing observations feed the regression;
	// older data only dilutes a short-horizon extrapolation
	fitWindow = 10
	// smoothWindow is the trailing-mean span applied to raw extrapolations
	smoothWindow = 3
)

// Predictor extrapolates a NAV series a few days forward with an
// ordinary-least-squares line over the most recent observations, then smooths
// the raw line to damp single-day noise. It is a short-horizon heuristic, not
// a forecast model.
type Predictor struct {
	horizon int
}

// NewPredictor creates a predictor projecting `horizon` days ahead
func NewPredictor(horizon int) *Predictor {
	if horizon <= 0 {
		horizon = 5
	}
	return &Predictor{horizon: horizon}
}

// Predict returns one point per future day, 1 through horizon. The series
// must hold at least 5 observations or the call fails with
// domain.ErrInsufficientHistory. Predicted change is measured against the
// latest observed NAV using the smoothed value.
func (p *Predictor) Predict(series []domain.HistoricalRecord) ([]PredictionPoint, error) {
	if len(series) < minPredictionHistory {
		return nil, fmt.Errorf("%w: need %d observations, have %d",
			domain.ErrInsufficientHistory, minPredictionHistory, len(series))
	}

	window := fitWindow
	if limit := len(series) - 1; window > limit {
		window = limit
	}
	recent := domain.Navs(series[len(series)-window:])

	xs := make([]float64, len(recent))
	for i := range xs {
		xs[i] = float64(i)
	}

	fit, ok := formulas.FitLine(xs, recent)
	if !ok {
		return nil, fmt.Errorf("%w: degenerate fit window", domain.ErrInsufficientHistory)
	}

	raw := make([]float64, p.horizon)
	for day := 0; day < p.horizon; day++ {
		raw[day] = fit.At(float64(len(recent) + day))
	}

	span := smoothWindow
	if span > p.horizon {
		span = p.horizon
	}
	smoothed := formulas.TrailingMean(raw, span)

	latest := series[len(series)-1].Nav
	points := make([]PredictionPoint, p.horizon)
	for day := 0; day < p.horizon; day++ {
		points[day] = PredictionPoint{
			Day:             day + 1,
			PredictedNav:    formulas.Round4(smoothed[day]),
			PredictedChange: formulas.Round2(formulas.PercentChange(smoothed[day], latest)),
		}
	}

	return points, nil
}
