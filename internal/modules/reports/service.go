// Package reports runs the batch analysis over every tracked fund and turns
// the results into rendered, deliverable reports.
package reports

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fund-sentry/internal/events"
	"github.com/aristath/fund-sentry/internal/modules/analysis"
	"github.com/aristath/fund-sentry/internal/modules/holdings"
	"github.com/aristath/fund-sentry/pkg/formulas"
)

// Analyzer runs a single-fund analysis pass
type Analyzer interface {
	AnalyzeHolding(ctx context.Context, req analysis.Request) (*analysis.AnalysisRecord, error)
	AnalyzeWatch(ctx context.Context, req analysis.Request) (*analysis.AnalysisRecord, error)
}

// Store supplies the funds to analyze and the disclaimer flag
type Store interface {
	List() ([]holdings.Holding, error)
	ListWatchlist() ([]holdings.WatchItem, error)
	DisclaimerShown() (bool, error)
	MarkDisclaimerShown() error
}

// FundResult is one fund's outcome within a batch. Either Record or Error is
// set, never both.
type FundResult struct {
	FundCode string                   `json:"fund_code"`
	FundName string                   `json:"fund_name"`
	Record   *analysis.AnalysisRecord `json:"record,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// Totals aggregates the held positions that analyzed successfully
type Totals struct {
	Invested    float64 `json:"invested"`
	MarketValue float64 `json:"market_value"`
	TotalProfit float64 `json:"total_profit"`
	TodayProfit float64 `json:"today_profit"`
	ReturnRate  float64 `json:"return_rate"` // %
}

// Batch is one full report run
type Batch struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Holdings    []FundResult `json:"holdings"`
	Watchlist   []FundResult `json:"watchlist"`
	Totals      Totals       `json:"totals"`
	Failures    int          `json:"failures"`
	FirstRun    bool         `json:"first_run"` // extended disclaimer goes out once
}

// Service walks holdings then watchlist, analyzing each fund with a pacing
// delay between requests so upstream sources are not hammered. A single
// fund's failure never aborts the batch.
type Service struct {
	analyzer Analyzer
	store    Store
	events   *events.Manager
	log      zerolog.Logger
	pacing   time.Duration
}

// NewService creates a new report service
func NewService(analyzer Analyzer, store Store, eventManager *events.Manager, pacing time.Duration, log zerolog.Logger) *Service {
	return &Service{
		analyzer: analyzer,
		store:    store,
		events:   eventManager,
		log:      log.With().Str("service", "reports").Logger(),
		pacing:   pacing,
	}
}

// Run executes a full batch
func (s *Service) Run(ctx context.Context) (*Batch, error) {
	batch := &Batch{GeneratedAt: time.Now()}

	held, err := s.store.List()
	if err != nil {
		return nil, err
	}
	watched, err := s.store.ListWatchlist()
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("holdings", len(held)).Int("watchlist", len(watched)).Msg("Starting report batch")

	for i, h := range held {
		if err := s.pace(ctx, i == 0); err != nil {
			return nil, err
		}
		batch.Holdings = append(batch.Holdings, s.analyzeHolding(ctx, h))
	}
	for i, w := range watched {
		if err := s.pace(ctx, len(held) == 0 && i == 0); err != nil {
			return nil, err
		}
		batch.Watchlist = append(batch.Watchlist, s.analyzeWatch(ctx, w))
	}

	s.aggregate(batch)

	shown, err := s.store.DisclaimerShown()
	if err != nil {
		s.log.Warn().Err(err).Msg("Could not read disclaimer flag")
	} else if !shown {
		batch.FirstRun = true
		if err := s.store.MarkDisclaimerShown(); err != nil {
			s.log.Warn().Err(err).Msg("Could not persist disclaimer flag")
		}
	}

	s.events.Emit(events.ReportGenerated, "reports", map[string]interface{}{
		"holdings":  len(batch.Holdings),
		"watchlist": len(batch.Watchlist),
		"failures":  batch.Failures,
	})

	return batch, nil
}

// pace sleeps between funds. The first request goes out immediately.
func (s *Service) pace(ctx context.Context, isFirst bool) error {
	if isFirst || s.pacing <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.pacing):
		return nil
	}
}

func (s *Service) analyzeHolding(ctx context.Context, h holdings.Holding) FundResult {
	result := FundResult{FundCode: h.FundCode, FundName: h.Name}

	record, err := s.analyzer.AnalyzeHolding(ctx, analysis.Request{
		FundCode:   h.FundCode,
		FundName:   h.Name,
		CostBasis:  h.CostBasis,
		Amount:     h.Amount,
		StartDate:  h.InvestmentStartDate,
		IncludeAux: true,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("fund", h.FundCode).Msg("Holding analysis failed")
		result.Error = err.Error()
		return result
	}

	result.Record = record
	if result.FundName == "" {
		result.FundName = record.FundName
	}
	return result
}

func (s *Service) analyzeWatch(ctx context.Context, w holdings.WatchItem) FundResult {
	result := FundResult{FundCode: w.FundCode, FundName: w.Name}

	record, err := s.analyzer.AnalyzeWatch(ctx, analysis.Request{
		FundCode:  w.FundCode,
		FundName:  w.Name,
		StartDate: w.WatchStartDate,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("fund", w.FundCode).Msg("Watchlist analysis failed")
		result.Error = err.Error()
		return result
	}

	result.Record = record
	if result.FundName == "" {
		result.FundName = record.FundName
	}
	return result
}

// aggregate sums the held positions that produced return figures
func (s *Service) aggregate(batch *Batch) {
	for _, r := range batch.Holdings {
		if r.Error != "" {
			batch.Failures++
			continue
		}
		if r.Record.Returns == nil {
			continue
		}
		ret := r.Record.Returns
		batch.Totals.Invested += ret.CostBasis * ret.Shares
		batch.Totals.MarketValue += ret.MarketValue
		batch.Totals.TotalProfit += ret.TotalProfit
		batch.Totals.TodayProfit += ret.TodayProfit
	}
	for _, r := range batch.Watchlist {
		if r.Error != "" {
			batch.Failures++
		}
	}

	batch.Totals.Invested = formulas.Round2(batch.Totals.Invested)
	batch.Totals.MarketValue = formulas.Round2(batch.Totals.MarketValue)
	batch.Totals.TotalProfit = formulas.Round2(batch.Totals.TotalProfit)
	batch.Totals.TodayProfit = formulas.Round2(batch.Totals.TodayProfit)
	batch.Totals.ReturnRate = formulas.Round2(formulas.PercentChange(batch.Totals.MarketValue, batch.Totals.Invested))
}
