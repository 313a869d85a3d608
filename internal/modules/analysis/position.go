package analysis

import (
	"fmt"
)

// windowPolicy defines the scoring bands for one moving-average window.
// Deviations below -strong score +strongDelta (deep discount), below -mild
// score +mildDelta; the positive side mirrors with negative deltas. Strict
// inequalities, so a deviation sitting exactly on a threshold falls into the
// milder band.
type windowPolicy struct {
	label       string
	strong      float64
	mild        float64
	strongDelta int
	mildDelta   int
	horizon     string
}

var windowPolicies = []windowPolicy{
	{label: "ma20", strong: 10, mild: 5, strongDelta: 2, mildDelta: 1, horizon: "20-day"},
	{label: "ma60", strong: 15, mild: 8, strongDelta: 3, mildDelta: 2, horizon: "60-day"},
	{label: "ma250", strong: 20, mild: 10, strongDelta: 4, mildDelta: 3, horizon: "250-day"},
	{label: "ma500", strong: 25, mild: 15, strongDelta: 3, mildDelta: 2, horizon: "500-day"},
}

const (
	scoreFloor = -5
	scoreCeil  = 5
)

// PositionScorer turns moving-average deviations into a bounded score and a
// discrete recommendation. Longer windows carry more weight; the raw sum is
// clamped so no single regime dominates the headline signal.
type PositionScorer struct{}

// NewPositionScorer creates a new scorer
func NewPositionScorer() *PositionScorer {
	return &PositionScorer{}
}

// Score assesses the current NAV position against each available window.
// Windows missing from the set contribute nothing.
func (s *PositionScorer) Score(set MovingAverageSet) PositionAssessment {
	score := 0
	narrative := make([]string, 0, len(windowPolicies))

	for _, p := range windowPolicies {
		dev, ok := set.Deviations[p.label]
		if !ok {
			continue
		}

		switch {
		case dev < -p.strong:
			score += p.strongDelta
			narrative = append(narrative, fmt.Sprintf("%.2f%% below the %s average, deep discount zone", -dev, p.horizon))
		case dev < -p.mild:
			score += p.mildDelta
			narrative = append(narrative, fmt.Sprintf("%.2f%% below the %s average, moderately undervalued", -dev, p.horizon))
		case dev > p.strong:
			score -= p.strongDelta
			narrative = append(narrative, fmt.Sprintf("%.2f%% above the %s average, stretched territory", dev, p.horizon))
		case dev > p.mild:
			score -= p.mildDelta
			narrative = append(narrative, fmt.Sprintf("%.2f%% above the %s average, moderately elevated", dev, p.horizon))
		default:
			narrative = append(narrative, fmt.Sprintf("tracking near the %s average (%+.2f%%)", p.horizon, dev))
		}
	}

	if score > scoreCeil {
		score = scoreCeil
	}
	if score < scoreFloor {
		score = scoreFloor
	}

	assessment := PositionAssessment{
		Score:     score,
		Narrative: narrative,
	}

	switch {
	case score >= 3:
		assessment.Position = PositionLow
		assessment.Signal = SignalStrongBuy
		assessment.Recommendation = "NAV sits well below its long-horizon averages; conditions favor adding"
	case score >= 1:
		assessment.Position = PositionMediumLow
		assessment.Signal = SignalBuy
		assessment.Recommendation = "NAV is somewhat below trend; gradual accumulation is reasonable"
	case score <= -3:
		assessment.Position = PositionHigh
		assessment.Signal = SignalStrongSell
		assessment.Recommendation = "NAV is far above its long-horizon averages; consider trimming"
	case score <= -1:
		assessment.Position = PositionMediumHigh
		assessment.Signal = SignalSell
		assessment.Recommendation = "NAV is somewhat above trend; avoid adding at these levels"
	default:
		assessment.Position = PositionMedium
		assessment.Signal = SignalHold
		assessment.Recommendation = "NAV is tracking close to its averages; no action suggested"
	}

	assessment.Detail = s.detailText(set, narrative)

	return assessment
}

// detailText condenses the assessment into one line: the current NAV plus the
// two leading window observations.
func (s *PositionScorer) detailText(set MovingAverageSet, narrative []string) string {
	detail := fmt.Sprintf("current NAV %.4f", set.CurrentNav)
	for i, hint := range narrative {
		if i >= 2 {
			break
		}
		detail += "; " + hint
	}
	return detail
}
