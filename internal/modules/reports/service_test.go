package reports

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fund-sentry/internal/domain"
	"github.com/aristath/fund-sentry/internal/events"
	"github.com/aristath/fund-sentry/internal/modules/analysis"
	"github.com/aristath/fund-sentry/internal/modules/holdings"
)

type fakeStore struct {
	holdings  []holdings.Holding
	watchlist []holdings.WatchItem
	shown     bool
	marked    int
}

func (s *fakeStore) List() ([]holdings.Holding, error) { return s.holdings, nil }

func (s *fakeStore) ListWatchlist() ([]holdings.WatchItem, error) { return s.watchlist, nil }

func (s *fakeStore) DisclaimerShown() (bool, error) { return s.shown, nil }
func (s *fakeStore) MarkDisclaimerShown() error {
	s.shown = true
	s.marked++
	return nil
}

type fakeAnalyzer struct {
	failCodes map[string]bool
}

func (a *fakeAnalyzer) record(req analysis.Request, held bool) (*analysis.AnalysisRecord, error) {
	if a.failCodes[req.FundCode] {
		return nil, domain.ErrDataUnavailable
	}
	rec := &analysis.AnalysisRecord{
		FundCode:    req.FundCode,
		FundName:    req.FundName,
		DataDate:    "2024-06-28",
		DataPoints:  100,
		GeneratedAt: time.Now(),
		Position: analysis.PositionAssessment{
			Signal:         analysis.SignalHold,
			Position:       analysis.PositionMedium,
			Recommendation: "steady",
		},
	}
	if held {
		rec.Returns = &analysis.ReturnSummary{
			ReturnRate:  5,
			TotalProfit: 500,
			TodayChange: 1,
			TodayProfit: 100,
			Shares:      10000,
			MarketValue: 10500,
			CostBasis:   1,
			CurrentNav:  1.05,
		}
	}
	return rec, nil
}

func (a *fakeAnalyzer) AnalyzeHolding(_ context.Context, req analysis.Request) (*analysis.AnalysisRecord, error) {
	return a.record(req, true)
}

func (a *fakeAnalyzer) AnalyzeWatch(_ context.Context, req analysis.Request) (*analysis.AnalysisRecord, error) {
	return a.record(req, false)
}

func newTestService(store *fakeStore, analyzer *fakeAnalyzer) *Service {
	return NewService(analyzer, store, events.NewManager(zerolog.Nop()), 0, zerolog.Nop())
}

func TestRunAggregatesTotals(t *testing.T) {
	store := &fakeStore{
		holdings: []holdings.Holding{
			{FundCode: "161725", Name: "Fund A", CostBasis: 1, Amount: 10000},
			{FundCode: "005827", Name: "Fund B", CostBasis: 1, Amount: 10000},
		},
		watchlist: []holdings.WatchItem{
			{FundCode: "110011", Name: "Watch C"},
		},
		shown: true,
	}

	batch, err := newTestService(store, &fakeAnalyzer{}).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, batch.Holdings, 2)
	assert.Len(t, batch.Watchlist, 1)
	assert.Equal(t, 0, batch.Failures)
	assert.False(t, batch.FirstRun)

	assert.Equal(t, 20000.0, batch.Totals.Invested)
	assert.Equal(t, 21000.0, batch.Totals.MarketValue)
	assert.Equal(t, 1000.0, batch.Totals.TotalProfit)
	assert.Equal(t, 200.0, batch.Totals.TodayProfit)
	assert.Equal(t, 5.0, batch.Totals.ReturnRate)

	assert.Nil(t, batch.Watchlist[0].Record.Returns)
}

func TestRunToleratesFundFailures(t *testing.T) {
	store := &fakeStore{
		holdings: []holdings.Holding{
			{FundCode: "161725", Name: "Fund A", CostBasis: 1, Amount: 10000},
			{FundCode: "999999", Name: "Broken", CostBasis: 1, Amount: 10000},
		},
		shown: true,
	}

	batch, err := newTestService(store, &fakeAnalyzer{failCodes: map[string]bool{"999999": true}}).Run(context.Background())
	require.NoError(t, err, "a single fund failure must not abort the batch")

	assert.Equal(t, 1, batch.Failures)
	assert.NotEmpty(t, batch.Holdings[1].Error)
	assert.Nil(t, batch.Holdings[1].Record)

	// Totals only cover the fund that analyzed
	assert.Equal(t, 10000.0, batch.Totals.Invested)
}

func TestRunMarksDisclaimerOnce(t *testing.T) {
	store := &fakeStore{shown: false}
	svc := newTestService(store, &fakeAnalyzer{})

	batch, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, batch.FirstRun)
	assert.Equal(t, 1, store.marked)

	batch, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, batch.FirstRun)
	assert.Equal(t, 1, store.marked)
}

func TestRunFirstWatchFundSkipsPacing(t *testing.T) {
	// With no holdings, the very first request of the batch is a watch
	// fund and must go out without a pacing delay. The canceled context
	// would trip any pace wait.
	store := &fakeStore{
		watchlist: []holdings.WatchItem{{FundCode: "110011", Name: "Watch C"}},
		shown:     true,
	}
	svc := NewService(&fakeAnalyzer{}, store, events.NewManager(zerolog.Nop()), time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, batch.Watchlist, 1)
}

func TestRunHonorsContextDuringPacing(t *testing.T) {
	store := &fakeStore{
		holdings: []holdings.Holding{
			{FundCode: "161725", CostBasis: 1, Amount: 100},
			{FundCode: "005827", CostBasis: 1, Amount: 100},
		},
		shown: true,
	}
	svc := NewService(&fakeAnalyzer{}, store, events.NewManager(zerolog.Nop()), time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
