package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratten/lapgpx/internal/models"
)

func ptr[T any](v T) *T { return &v }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func collect[T any](t *testing.T, c models.Cursor[T]) []T {
	t.Helper()
	defer c.Close()
	var out []T
	for c.Next() {
		out = append(out, c.Value())
	}
	require.NoError(t, c.Err())
	return out
}

func TestActivityRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.InsertActivity(ctx, models.Activity{
		Name:      ptr("Morning"),
		Comment:   ptr("Great run"),
		StartTime: 1000,
		Sport:     ptr(models.SportWalking),
		MetaData:  ptr("barometer"),
	})
	require.NoError(t, err)

	act, err := store.Activity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, act.ID)
	assert.Equal(t, "Great run", *act.Comment)
	assert.Equal(t, int64(1000), act.StartTime)
	assert.Equal(t, models.SportWalking, *act.Sport)
	assert.True(t, act.WithBarometer())

	bare, err := store.InsertActivity(ctx, models.Activity{StartTime: 2000})
	require.NoError(t, err)
	act, err = store.Activity(ctx, bare)
	require.NoError(t, err)
	assert.Nil(t, act.Comment)
	assert.Nil(t, act.Sport)
	assert.False(t, act.WithBarometer())

	list, err := store.ListActivities(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, bare, list[0].ID, "newest first")
}

func TestActivityNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Activity(context.Background(), 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLapsFilterAndOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	id, err := store.InsertActivity(ctx, models.Activity{StartTime: 1000})
	require.NoError(t, err)

	for _, lap := range []models.Lap{
		{ID: 2, Distance: 300, Duration: 70},
		{ID: 0, Distance: 100, Duration: 60},
		{ID: 1, Distance: 0, Duration: 0},
		{ID: 3, Distance: 0, Duration: 12},
	} {
		require.NoError(t, store.InsertLap(ctx, id, lap))
	}

	c, err := store.Laps(ctx, id, false)
	require.NoError(t, err)
	laps := collect(t, c)
	require.Len(t, laps, 3)
	assert.Equal(t, []int64{0, 2, 3}, []int64{laps[0].ID, laps[1].ID, laps[2].ID})
	assert.Equal(t, 100.0, laps[0].Distance)
	assert.Equal(t, int64(60), laps[0].Duration)

	c, err = store.Laps(ctx, id, true)
	require.NoError(t, err)
	laps = collect(t, c)
	require.Len(t, laps, 4)
	assert.True(t, laps[1].IsRest())
}

func TestLocations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	id, err := store.InsertActivity(ctx, models.Activity{StartTime: 1000})
	require.NoError(t, err)
	other, err := store.InsertActivity(ctx, models.Activity{StartTime: 1000})
	require.NoError(t, err)

	full := models.Location{
		LapID: 0, Time: 1_000_000, Latitude: 59.5, Longitude: 18.1,
		Altitude: ptr(10.5), GPSAltitude: ptr(11.0), HeartRate: ptr(150), Cadence: ptr(80.0),
		Temperature: ptr(20.0), Pressure: ptr(1000.0), Accuracy: ptr(3.0), Bearing: ptr(90.0),
		Speed: ptr(2.5), Satellites: ptr(7), Type: 1,
	}
	rows := []models.Location{
		full,
		{LapID: 0, Time: 1_001_000, Latitude: 59.6, Longitude: 18.2},
		{LapID: 1, Time: 1_002_000, Latitude: 59.7, Longitude: 18.3},
		{LapID: 1, Time: 1_003_000, Latitude: 59.8, Longitude: 18.4},
	}
	for _, loc := range rows {
		require.NoError(t, store.InsertLocation(ctx, id, loc))
	}
	require.NoError(t, store.InsertLocation(ctx, other, models.Location{LapID: 0, Time: 5}))

	c, err := store.Locations(ctx, id)
	require.NoError(t, err)
	got := collect(t, c)
	assert.Equal(t, rows, got)

	last, err := store.LastLocation(ctx, id, 0)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, int64(1_001_000), last.Time)

	first, err := store.FirstLocation(ctx, id, 1)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(1_002_000), first.Time)

	none, err := store.FirstLocation(ctx, id, 5)
	require.NoError(t, err)
	assert.Nil(t, none)
}
