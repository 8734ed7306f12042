package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestSnapshotStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newTestManager(t).SnapshotStorage()

	_, err := storage.GetSnapshot(ctx, "2025-03-14")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	records := []models.StockRecord{
		{Symbol: "RELIANCE", Name: "Reliance", Sector: "Energy", CurrentPrice: 2950, Beta: 1, MonthReturn: 3.2},
		{Symbol: "TCS", Name: "TCS", Sector: "IT", CurrentPrice: 3800, Beta: 0.7, MonthReturn: -1.1},
	}
	require.NoError(t, storage.SaveSnapshot(ctx, "2025-03-14", records))

	got, err := storage.GetSnapshot(ctx, "2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, records, got)

	require.NoError(t, storage.SaveSnapshot(ctx, "2025-03-14", records[:1]))
	got, err = storage.GetSnapshot(ctx, "2025-03-14")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRunStorage_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	storage := newTestManager(t).RunStorage()

	base := time.Date(2025, 3, 10, 10, 15, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := &models.RunRecord{
			ID:             id,
			StartedAt:      base.Add(time.Duration(i) * 24 * time.Hour),
			Status:         models.RunStatusCompleted,
			StocksAnalyzed: 40 + i,
		}
		require.NoError(t, storage.SaveRun(ctx, run))
	}

	runs, err := storage.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)

	all, err := storage.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	assert.Error(t, storage.SaveRun(ctx, &models.RunRecord{}))
}
