package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/pkg/config"
	"github.com/wonny/quantengine/pkg/database"
)

func openDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(ctx, db.Pool))
	t.Cleanup(db.Close)
	return db
}

func TestWindowBucket(t *testing.T) {
	at := time.Unix(86400*3+5, 0)
	assert.Equal(t, int64(3), windowBucket(at, 24*time.Hour))
	assert.Equal(t, at.Unix(), windowBucket(at, 0))
}

func TestSignalRepository_Integration(t *testing.T) {
	db := openDB(t)
	repo := NewSignalRepository(db.Pool)
	ctx := context.Background()

	ticker := "T" + uuid.NewString()[:8]
	created := time.Now().UTC().Add(-10 * 24 * time.Hour).Truncate(time.Second)

	first := signal(uuid.NewString(), ticker, contracts.SignalRSIOversold, created)
	require.NoError(t, repo.Create(ctx, first, 24*time.Hour))

	dup := signal(uuid.NewString(), ticker, contracts.SignalRSIOversold, created.Add(time.Hour))
	assert.ErrorIs(t, repo.Create(ctx, dup, 24*time.Hour), contracts.ErrDuplicateSignal)

	active, err := repo.ListActive(ctx, created.Add(-time.Minute), created.Add(time.Minute))
	require.NoError(t, err)

	var found *contracts.QuantSignal
	for i := range active {
		if active[i].ID == first.ID {
			found = &active[i]
		}
	}
	require.NotNil(t, found)

	require.NoError(t, found.Resolve(contracts.StatusMiss, 9, -10, time.Now()))
	require.NoError(t, repo.Resolve(ctx, *found))
	assert.ErrorIs(t, repo.Resolve(ctx, *found), contracts.ErrAlreadyResolved)
}

func TestRankingRepository_Integration(t *testing.T) {
	db := openDB(t)
	repo := NewRankingRepository(db.Pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	ranking := &contracts.Ranking{
		RunID:     uuid.NewString(),
		Date:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
		Items: []contracts.RankingItem{
			{Position: 1, Ticker: "AAA3", AssetClass: contracts.AssetEquity, Profile: contracts.ProfileDefensive, Score: 90, Action: contracts.ActionBuy},
			{Position: 2, Ticker: "BBB11", AssetClass: contracts.AssetREITFund, Profile: contracts.ProfileBold, Score: 70, Action: contracts.ActionWait},
		},
	}
	require.NoError(t, repo.SaveRanking(ctx, ranking))

	latest, err := repo.LatestRanking(ctx)
	require.NoError(t, err)
	assert.Equal(t, ranking.RunID, latest.RunID)
	require.Len(t, latest.Items, 2)
	assert.Equal(t, "BBB11", latest.Items[1].Ticker)
}

func TestSnapshotRepository_Integration(t *testing.T) {
	db := openDB(t)
	repo := NewSnapshotRepository(db.Pool)
	ctx := context.Background()

	pid := "test-" + uuid.NewString()[:8]
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, contracts.PerformanceSnapshot{PortfolioID: pid, Date: day, Equity: 1000, Invested: 1000, QuotaPrice: 100}))
	require.NoError(t, repo.Append(ctx, contracts.PerformanceSnapshot{PortfolioID: pid, Date: day.AddDate(0, 0, 1), Equity: 1010, Invested: 1000, QuotaPrice: 101}))

	last, err := repo.Last(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 101.0, last.QuotaPrice)

	hist, err := repo.History(ctx, pid, day, day.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}
