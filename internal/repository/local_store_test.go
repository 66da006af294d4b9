package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
)

func openTestStore(t *testing.T) *LocalAvailabilityStore {
	t.Helper()
	store, err := OpenLocalAvailabilityStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLocalStoreLoadUnknownTenant(t *testing.T) {
	store := openTestStore(t)

	weekly, err := store.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.Equal(t, schedule.DefaultWeekly(), weekly)
}

func TestLocalStoreSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	weekly := schedule.DefaultWeekly()
	weekly[time.Monday] = []schedule.TimeWindow{{Start: "09:00", End: "12:00"}}
	weekly[time.Saturday] = []schedule.TimeWindow{
		{Start: "08:00", End: "10:00"},
		{Start: "11:00", End: "15:00"},
	}

	require.NoError(t, store.Save(ctx, "acme", weekly))

	loaded, err := store.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, weekly, loaded)
}

func TestLocalStoreTenantsAreIsolated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	weekly := schedule.DefaultWeekly()
	weekly[time.Friday] = []schedule.TimeWindow{{Start: "10:00", End: "16:00"}}
	require.NoError(t, store.Save(ctx, "acme", weekly))

	other, err := store.Load(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, other[time.Friday])
}

func TestLocalStoreSaveReplacesWholeSchedule(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := schedule.DefaultWeekly()
	first[time.Monday] = []schedule.TimeWindow{{Start: "09:00", End: "17:00"}}
	require.NoError(t, store.Save(ctx, "acme", first))

	second := schedule.DefaultWeekly()
	second[time.Tuesday] = []schedule.TimeWindow{{Start: "10:00", End: "12:00"}}
	require.NoError(t, store.Save(ctx, "acme", second))

	loaded, err := store.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, loaded[time.Monday])
	assert.Len(t, loaded[time.Tuesday], 1)
}
