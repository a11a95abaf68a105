package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripStore(t *testing.T) {
	require.False(t, Enabled())
	require.NoError(t, Open(filepath.Join(t.TempDir(), "trips.db")))
	require.True(t, Enabled())

	start := time.Date(2022, 1, 1, 8, 0, 0, 0, time.UTC)

	for i, trip := range []*Trip{
		{TripID: 100, Vin: "SALGA2EV9HA000001", Distance: 12.5},
		{TripID: 101, Vin: "SALGA2EV9HA000001", Distance: 3.2},
		{TripID: 200, Vin: "SALGA2EV9HA000002", Distance: 40},
	} {
		trip.StartTime = start.Add(time.Duration(i) * time.Hour)
		trip.EndTime = trip.StartTime.Add(30 * time.Minute)
		require.NoError(t, Store(trip))
	}

	// replaying a journey must not create a duplicate
	require.NoError(t, Store(&Trip{TripID: 100, Vin: "SALGA2EV9HA000001", Distance: 12.5, StartTime: start}))

	trips, err := Trips("SALGA2EV9HA000001", 10)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, int64(101), trips[0].TripID)
	assert.Equal(t, int64(100), trips[1].TripID)

	trips, err = Trips("SALGA2EV9HA000001", 1)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, int64(101), trips[0].TripID)

	last, err := LastTrip("SALGA2EV9HA000002")
	require.NoError(t, err)
	assert.Equal(t, int64(200), last.TripID)
	assert.Equal(t, 40.0, last.Distance)

	_, err = LastTrip("SALGA2EV9HA000003")
	assert.Error(t, err)
}
