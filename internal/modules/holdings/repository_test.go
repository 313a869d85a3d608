package holdings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fund-sentry/internal/database"
	"github.com/aristath/fund-sentry/internal/domain"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestHoldingLifecycle(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.Upsert(Holding{
		FundCode:  "161725",
		Name:      "Test Fund",
		CostBasis: 1.2,
		Amount:    5000,
	}))

	got, err := repo.Get("161725")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Test Fund", got.Name)
	assert.Equal(t, 1.2, got.CostBasis)
	assert.NotEmpty(t, got.CreatedAt)

	// Upsert updates in place
	require.NoError(t, repo.Upsert(Holding{FundCode: "161725", Name: "Renamed", CostBasis: 1.3, Amount: 6000}))
	got, err = repo.Get("161725")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 6000.0, got.Amount)

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete("161725"))
	got, err = repo.Get("161725")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertRejectsBadHoldings(t *testing.T) {
	repo := testRepo(t)

	for _, h := range []Holding{
		{FundCode: "", CostBasis: 1, Amount: 100},
		{FundCode: "161725", CostBasis: 0, Amount: 100},
		{FundCode: "161725", CostBasis: 1, Amount: -5},
	} {
		err := repo.Upsert(h)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	}
}

func TestWatchlistLifecycle(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.UpsertWatch(WatchItem{
		FundCode:       "005827",
		Name:           "Watch Fund",
		WatchStartDate: "2024-01-01",
	}))

	list, err := repo.ListWatchlist()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-01-01", list[0].WatchStartDate)

	require.NoError(t, repo.DeleteWatch("005827"))
	got, err := repo.GetWatch("005827")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMoveHoldingToWatchlist(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.Upsert(Holding{
		FundCode:     "161725",
		Name:         "Test Fund",
		CostBasis:    1.2,
		Amount:       5000,
		PurchaseDate: "2023-06-01",
	}))

	require.NoError(t, repo.MoveToWatchlist("161725"))

	holding, err := repo.Get("161725")
	require.NoError(t, err)
	assert.Nil(t, holding)

	watch, err := repo.GetWatch("161725")
	require.NoError(t, err)
	require.NotNil(t, watch)
	assert.Equal(t, "Test Fund", watch.Name)
	assert.Equal(t, "2023-06-01", watch.WatchStartDate)
}

func TestMoveWatchToHoldings(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.UpsertWatch(WatchItem{
		FundCode:       "005827",
		Name:           "Watch Fund",
		WatchStartDate: "2024-01-01",
	}))

	require.NoError(t, repo.MoveToHoldings("005827", 2.5, 10000, "2024-03-01"))

	watch, err := repo.GetWatch("005827")
	require.NoError(t, err)
	assert.Nil(t, watch)

	holding, err := repo.Get("005827")
	require.NoError(t, err)
	require.NotNil(t, holding)
	assert.Equal(t, 2.5, holding.CostBasis)
	assert.Equal(t, "2024-03-01", holding.PurchaseDate)
	assert.Equal(t, "2024-01-01", holding.InvestmentStartDate)
}

func TestMoveMissingRows(t *testing.T) {
	repo := testRepo(t)

	err := repo.MoveToWatchlist("000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = repo.MoveToHoldings("000000", 1, 100, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestDisclaimerSetting(t *testing.T) {
	repo := testRepo(t)

	shown, err := repo.DisclaimerShown()
	require.NoError(t, err)
	assert.False(t, shown)

	require.NoError(t, repo.MarkDisclaimerShown())

	shown, err = repo.DisclaimerShown()
	require.NoError(t, err)
	assert.True(t, shown)
}
