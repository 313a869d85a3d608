package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fund-sentry/internal/domain"
	"github.com/aristath/fund-sentry/internal/events"
)

type fakeFetcher struct {
	series    []domain.HistoricalRecord
	seriesErr error
	quote     domain.Quote
	quoteErr  error
	flow      *domain.FlowSignal
	flowErr   error
	hot       *domain.HotSignal
	hotErr    error
}

func (f *fakeFetcher) FetchSeries(context.Context, string, time.Time, int) ([]domain.HistoricalRecord, error) {
	return f.series, f.seriesErr
}

func (f *fakeFetcher) LatestQuote(context.Context, string) (domain.Quote, error) {
	return f.quote, f.quoteErr
}

func (f *fakeFetcher) CapitalFlow(context.Context, string) (*domain.FlowSignal, error) {
	return f.flow, f.flowErr
}

func (f *fakeFetcher) SectorHotness(context.Context, string) (*domain.HotSignal, error) {
	return f.hot, f.hotErr
}

func newTestService(fetcher Fetcher) *Service {
	return NewService(fetcher, events.NewManager(zerolog.Nop()), 730, 5, zerolog.Nop())
}

func TestAnalyzeHolding(t *testing.T) {
	series := makeSeries(250, 1.0, 0)
	series[len(series)-1].Nav = 1.05

	svc := newTestService(&fakeFetcher{
		series: series,
		quote: domain.Quote{
			FundCode:   "161725",
			Date:       series[len(series)-1].Date,
			Nav:        1.05,
			Provenance: domain.ProvenanceOfficial,
		},
	})

	record, err := svc.AnalyzeHolding(context.Background(), Request{
		FundCode:  "161725",
		FundName:  "Test Fund",
		CostBasis: 1.0,
		Amount:    10000,
	})
	require.NoError(t, err)

	assert.Equal(t, "Test Fund", record.FundName)
	assert.Equal(t, 250, record.DataPoints)
	assert.Equal(t, "2024-06-28", record.DataDate)
	assert.False(t, record.IsToday, "an old official close is not same-day data")

	require.NotNil(t, record.Returns)
	assert.Equal(t, 5.0, record.Returns.ReturnRate)
	assert.Equal(t, 500.0, record.Returns.TotalProfit)

	assert.True(t, record.MovingAverages.Has("ma250"))
	assert.NotEmpty(t, record.Position.Recommendation)
	assert.Len(t, record.Prediction, 5)
	assert.Nil(t, record.Auxiliary)
}

func TestAnalyzeHoldingRejectsBadInputs(t *testing.T) {
	svc := newTestService(&fakeFetcher{series: makeSeries(30, 1.0, 0)})

	_, err := svc.AnalyzeHolding(context.Background(), Request{FundCode: "161725"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAnalyzeWatchSkipsReturns(t *testing.T) {
	svc := newTestService(&fakeFetcher{series: makeSeries(60, 1.0, 0.005)})

	record, err := svc.AnalyzeWatch(context.Background(), Request{FundCode: "005827", FundName: "Watch Fund"})
	require.NoError(t, err)

	assert.Nil(t, record.Returns)
	assert.True(t, record.MovingAverages.Has("ma60"))
	assert.NotEmpty(t, record.Position.Signal)
}

func TestAnalyzeFailsWhenNoHistory(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
	}{
		{name: "fetch error", fetcher: &fakeFetcher{seriesErr: domain.ErrDataUnavailable}},
		{name: "empty series", fetcher: &fakeFetcher{series: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(tt.fetcher).AnalyzeWatch(context.Background(), Request{FundCode: "161725"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
		})
	}
}

func TestAnalyzeShortSeriesOmitsPrediction(t *testing.T) {
	svc := newTestService(&fakeFetcher{series: makeSeries(4, 1.0, 0.01)})

	record, err := svc.AnalyzeWatch(context.Background(), Request{FundCode: "161725"})
	require.NoError(t, err, "a short series degrades, it does not fail")

	assert.Empty(t, record.Prediction)
	assert.Empty(t, record.MovingAverages.Averages)
	assert.Equal(t, SignalHold, record.Position.Signal)
	assert.Equal(t, 4, record.DataPoints)
}

func TestAnalyzeToleratesQuoteFailure(t *testing.T) {
	svc := newTestService(&fakeFetcher{
		series:   makeSeries(30, 1.0, 0),
		quoteErr: domain.ErrDataUnavailable,
	})

	record, err := svc.AnalyzeWatch(context.Background(), Request{FundCode: "161725"})
	require.NoError(t, err)
	assert.False(t, record.IsToday)
}

func TestAnalyzeMarksSameDayOfficialClose(t *testing.T) {
	series := makeSeries(30, 1.0, 0)
	series[len(series)-1].Date = time.Now()

	svc := newTestService(&fakeFetcher{
		series: series,
		quote: domain.Quote{
			FundCode:   "161725",
			Date:       time.Now(),
			Nav:        1.0,
			Provenance: domain.ProvenanceOfficial,
		},
	})

	record, err := svc.AnalyzeWatch(context.Background(), Request{FundCode: "161725"})
	require.NoError(t, err)
	assert.True(t, record.IsToday)
}

func TestAnalyzeEstimateQuoteIsNotSameDayClose(t *testing.T) {
	svc := newTestService(&fakeFetcher{
		series: makeSeries(30, 1.0, 0),
		quote: domain.Quote{
			FundCode:   "161725",
			Date:       time.Now(),
			Nav:        1.01,
			Provenance: domain.ProvenanceEstimate,
		},
	})

	record, err := svc.AnalyzeWatch(context.Background(), Request{FundCode: "161725"})
	require.NoError(t, err)
	assert.False(t, record.IsToday, "an intraday estimate never counts as an official close")
}

func TestAnalyzeCollectsAuxiliarySignals(t *testing.T) {
	svc := newTestService(&fakeFetcher{
		series: makeSeries(30, 1.0, 0),
		flow:   &domain.FlowSignal{NetInflow: 100, Trend: "inflow"},
		hotErr: errors.New("page unreachable"),
	})

	record, err := svc.AnalyzeWatch(context.Background(), Request{FundCode: "161725", IncludeAux: true})
	require.NoError(t, err)

	require.NotNil(t, record.Auxiliary)
	require.NotNil(t, record.Auxiliary.Flow)
	assert.Equal(t, "inflow", record.Auxiliary.Flow.Trend)
	assert.Nil(t, record.Auxiliary.Hotness)
}

func TestAnalyzeAuxiliaryFullyUnavailable(t *testing.T) {
	svc := newTestService(&fakeFetcher{
		series:  makeSeries(30, 1.0, 0),
		flowErr: errors.New("down"),
		hotErr:  errors.New("down"),
	})

	record, err := svc.AnalyzeWatch(context.Background(), Request{FundCode: "161725", IncludeAux: true})
	require.NoError(t, err)
	assert.Nil(t, record.Auxiliary)
}

func TestAnalyzeFillsNameFromQuote(t *testing.T) {
	svc := newTestService(&fakeFetcher{
		series: makeSeries(30, 1.0, 0),
		quote:  domain.Quote{FundCode: "161725", FundName: "Quoted Name", Provenance: domain.ProvenanceEstimate},
	})

	record, err := svc.AnalyzeWatch(context.Background(), Request{FundCode: "161725"})
	require.NoError(t, err)
	assert.Equal(t, "Quoted Name", record.FundName)
}
