package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fund-sentry/internal/domain"
	"github.com/aristath/fund-sentry/internal/events"
)

// Fetcher supplies NAV data and auxiliary signals for a fund
type Fetcher interface {
	FetchSeries(ctx context.Context, fundCode string, startDate time.Time, lookbackDays int) ([]domain.HistoricalRecord, error)
	LatestQuote(ctx context.Context, fundCode string) (domain.Quote, error)
	CapitalFlow(ctx context.Context, fundCode string) (*domain.FlowSignal, error)
	SectorHotness(ctx context.Context, fundCode string) (*domain.HotSignal, error)
}

// Request describes one analysis invocation. CostBasis and Amount apply to
// held funds; watch-only funds leave them zero and get no return figures.
type Request struct {
	FundCode   string
	FundName   string
	CostBasis  float64
	Amount     float64
	StartDate  string // optional YYYY-MM-DD observation start
	IncludeAux bool
}

// Service orchestrates a full analysis pass: fetch, compute, assemble
type Service struct {
	fetcher      Fetcher
	movingAvg    *MovingAverageCalculator
	scorer       *PositionScorer
	returns      *ReturnCalculator
	predictor    *Predictor
	trend        *TrendClassifier
	events       *events.Manager
	log          zerolog.Logger
	lookbackDays int
}

// NewService creates a new analysis service
func NewService(fetcher Fetcher, eventManager *events.Manager, lookbackDays, predictHorizon int, log zerolog.Logger) *Service {
	if lookbackDays <= 0 {
		lookbackDays = 730
	}
	return &Service{
		fetcher:      fetcher,
		movingAvg:    NewMovingAverageCalculator(),
		scorer:       NewPositionScorer(),
		returns:      NewReturnCalculator(),
		predictor:    NewPredictor(predictHorizon),
		trend:        NewTrendClassifier(),
		events:       eventManager,
		log:          log.With().Str("service", "analysis").Logger(),
		lookbackDays: lookbackDays,
	}
}

// AnalyzeHolding runs a full analysis for a held fund, including return
// figures derived from its cost basis and invested amount.
func (s *Service) AnalyzeHolding(ctx context.Context, req Request) (*AnalysisRecord, error) {
	if req.CostBasis <= 0 || req.Amount <= 0 {
		return nil, fmt.Errorf("%w: holding %s needs positive cost basis and amount", domain.ErrInvalidInput, req.FundCode)
	}
	return s.analyze(ctx, req, true)
}

// AnalyzeWatch runs an analysis for a watch-only fund. No return figures are
// produced since there is no position to value.
func (s *Service) AnalyzeWatch(ctx context.Context, req Request) (*AnalysisRecord, error) {
	return s.analyze(ctx, req, false)
}

// analyze is the single sequencing point for an analysis pass. History is
// mandatory; every derived figure degrades independently when the series is
// too short, and auxiliary signals never fail the record.
func (s *Service) analyze(ctx context.Context, req Request, held bool) (*AnalysisRecord, error) {
	s.events.Emit(events.AnalysisStarted, "analysis", map[string]interface{}{"fund": req.FundCode})

	series, err := s.fetcher.FetchSeries(ctx, req.FundCode, time.Time{}, s.lookbackDays)
	if err != nil {
		s.events.EmitError("analysis", err, map[string]interface{}{"fund": req.FundCode})
		return nil, fmt.Errorf("analyze %s: %w", req.FundCode, err)
	}
	if len(series) == 0 {
		err := fmt.Errorf("analyze %s: %w", req.FundCode, domain.ErrDataUnavailable)
		s.events.EmitError("analysis", err, map[string]interface{}{"fund": req.FundCode})
		return nil, err
	}

	record := &AnalysisRecord{
		FundCode:    req.FundCode,
		FundName:    req.FundName,
		DataDate:    series[len(series)-1].Date.Format(domain.DateFormat),
		DataPoints:  len(series),
		GeneratedAt: time.Now(),
	}

	// The freshness flag rides on the latest quote when one is available;
	// a failed quote lookup downgrades to the history head's date.
	if quote, err := s.fetcher.LatestQuote(ctx, req.FundCode); err == nil {
		record.IsToday = quote.IsAuthoritative() && quote.IsToday(time.Now())
		if record.FundName == "" {
			record.FundName = quote.FundName
		}
	} else {
		s.log.Debug().Err(err).Str("fund", req.FundCode).Msg("Latest quote unavailable")
		record.IsToday = series[len(series)-1].Date.Format(domain.DateFormat) == time.Now().Format(domain.DateFormat)
	}

	if held {
		summary, err := s.returns.Compute(series, req.CostBasis, req.Amount)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", req.FundCode, err)
		}
		record.Returns = summary
	}

	record.MovingAverages = s.movingAvg.Compute(series)
	record.Position = s.scorer.Score(record.MovingAverages)
	record.Trend = s.trend.Classify(series)
	record.PeriodReturn = PeriodReturnSince(series, req.StartDate)

	points, err := s.predictor.Predict(series)
	switch {
	case err == nil:
		record.Prediction = points
	case errors.Is(err, domain.ErrInsufficientHistory):
		s.log.Debug().Str("fund", req.FundCode).Int("points", len(series)).Msg("Series too short for prediction")
	default:
		s.log.Warn().Err(err).Str("fund", req.FundCode).Msg("Prediction failed")
	}

	if req.IncludeAux {
		record.Auxiliary = s.collectAuxiliary(ctx, req.FundCode)
	}

	s.events.Emit(events.AnalysisCompleted, "analysis", map[string]interface{}{
		"fund":   req.FundCode,
		"score":  record.Position.Score,
		"signal": string(record.Position.Signal),
	})

	return record, nil
}

// collectAuxiliary gathers the optional secondary signals. Each one degrades
// to nil on failure; the record ships without it.
func (s *Service) collectAuxiliary(ctx context.Context, fundCode string) *domain.AuxiliarySignals {
	aux := &domain.AuxiliarySignals{}

	if flow, err := s.fetcher.CapitalFlow(ctx, fundCode); err == nil {
		aux.Flow = flow
	} else {
		s.log.Debug().Err(err).Str("fund", fundCode).Msg("Capital flow unavailable")
	}

	if hot, err := s.fetcher.SectorHotness(ctx, fundCode); err == nil {
		aux.Hotness = hot
	} else {
		s.log.Debug().Err(err).Str("fund", fundCode).Msg("Sector hotness unavailable")
	}

	if aux.Flow == nil && aux.Hotness == nil {
		return nil
	}
	return aux
}
