package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpen_ReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	rec := NewRecord(SourceAPI, prediction.DefaultFeatures(), prediction.ScoreResult{Score: 5.5, Tier: prediction.TierAverage})
	require.NoError(t, store.Save(ctx, rec))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestStore_SaveAndRecent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	fv := prediction.DefaultFeatures()
	fv.Alcohol = 12.3

	base := time.Now().UTC().Add(-time.Hour)
	for i, tier := range []prediction.QualityTier{prediction.TierBasic, prediction.TierGood, prediction.TierBest} {
		rec := &Record{
			Source:    SourceForm,
			Features:  fv,
			Score:     4.0 + float64(i)*2,
			Tier:      tier,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Save(ctx, rec))
		assert.NotEmpty(t, rec.ID)
	}

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, prediction.TierBest, records[0].Tier)
	assert.Equal(t, prediction.TierGood, records[1].Tier)
	assert.InDelta(t, 8.0, records[0].Score, 1e-12)
	assert.Equal(t, fv, records[0].Features)
	assert.Equal(t, SourceForm, records[0].Source)
	assert.WithinDuration(t, base.Add(2*time.Minute), records[0].CreatedAt, time.Microsecond)
}

func TestStore_RecentRejectsBadLimit(t *testing.T) {
	store := setupStore(t)

	for _, limit := range []int{0, -1, MaxRecent + 1} {
		_, err := store.Recent(context.Background(), limit)
		assert.Error(t, err, "limit %d", limit)
	}
}

func TestStore_TierCountsIncludesEmptyTiers(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	results := []prediction.ScoreResult{
		{Score: 8.1, Tier: prediction.TierBest},
		{Score: 5.2, Tier: prediction.TierAverage},
		{Score: 5.9, Tier: prediction.TierAverage},
	}
	for _, r := range results {
		require.NoError(t, store.Save(ctx, NewRecord(SourceAPI, prediction.DefaultFeatures(), r)))
	}

	counts, err := store.TierCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, len(prediction.Tiers()))

	byTier := make(map[prediction.QualityTier]TierCount)
	for _, c := range counts {
		byTier[c.Tier] = c
	}

	assert.Equal(t, prediction.TierBest, counts[0].Tier)
	assert.Equal(t, int64(1), byTier[prediction.TierBest].Count)
	assert.Equal(t, int64(2), byTier[prediction.TierAverage].Count)
	assert.Equal(t, int64(0), byTier[prediction.TierBasic].Count)
	assert.Equal(t, 2, byTier[prediction.TierAverage].Rank)
}

func TestStore_Prune(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	old := NewRecord(SourceAPI, prediction.DefaultFeatures(), prediction.ScoreResult{Score: 5, Tier: prediction.TierAverage})
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := NewRecord(SourceAPI, prediction.DefaultFeatures(), prediction.ScoreResult{Score: 6, Tier: prediction.TierGood})

	require.NoError(t, store.Save(ctx, old))
	require.NoError(t, store.Save(ctx, fresh))

	removed, err := store.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fresh.ID, records[0].ID)
}

func TestStore_Stats(t *testing.T) {
	store := setupStore(t)

	stats := store.Stats()
	assert.Contains(t, stats, "open_connections")
	assert.Equal(t, 8, stats["max_open_connections"])
}

func TestDB_UnknownPreparedStatement(t *testing.T) {
	db, err := OpenDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetPreparedStatement("missing")
	assert.Error(t, err)

	stmt, err := db.GetPreparedStatement("insert_prediction")
	assert.NoError(t, err)
	assert.NotNil(t, stmt)
}

func TestRecorder_WritesAndDrains(t *testing.T) {
	store := setupStore(t)
	recorder := NewRecorder(store, 16)

	for i := 0; i < 5; i++ {
		ok := recorder.Submit(NewRecord(SourceAPI, prediction.DefaultFeatures(), prediction.ScoreResult{Score: 5, Tier: prediction.TierAverage}))
		assert.True(t, ok)
	}
	recorder.Close()
	recorder.Close()

	records, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, records, 5)

	stats := recorder.Stats()
	assert.Equal(t, int64(5), stats["written"])
	assert.Equal(t, int64(0), stats["dropped"])
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := setupStore(t)
	r := &Recorder{
		store:   store,
		breaker: resilience.NewCircuitBreaker("history", resilience.CircuitBreakerConfig{}),
		queue:   make(chan *Record),
	}

	rec := NewRecord(SourceAPI, prediction.DefaultFeatures(), prediction.ScoreResult{Score: 5, Tier: prediction.TierAverage})
	assert.False(t, r.Submit(rec))
	assert.Equal(t, int64(1), r.Stats()["dropped"])
}

func TestRecorder_BreakerOpensOnClosedStore(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	recorder := NewRecorder(store, 16)
	for i := 0; i < 8; i++ {
		recorder.Submit(NewRecord(SourceAPI, prediction.DefaultFeatures(), prediction.ScoreResult{Score: 5, Tier: prediction.TierAverage}))
	}
	recorder.Close()

	stats := recorder.Stats()
	assert.Equal(t, int64(0), stats["written"])
	// five failures open the breaker, the rest are rejected without touching the store
	assert.Equal(t, int64(3), stats["dropped"])
	assert.Equal(t, "open", stats["breaker"].(map[string]interface{})["state"])
}

func TestStore_ScheduleRetention(t *testing.T) {
	store := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	old := NewRecord(SourceForm, prediction.DefaultFeatures(), prediction.ScoreResult{Score: 4.2, Tier: prediction.TierBasic})
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.Save(ctx, old))

	store.ScheduleRetention(ctx, time.Minute, time.Hour)

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
