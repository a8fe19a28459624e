package gpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "1970-01-01T00:00:00Z", FormatTime(0))
	assert.Equal(t, "1970-01-01T00:16:40Z", FormatTime(1_000_000))
	assert.Equal(t, "2013-04-01T08:05:09Z", FormatTime(1364803509_999))
}

func TestPointFilter(t *testing.T) {
	tests := []struct {
		name string
		next [3]float64 // time, lat, lon
		keep bool
	}{
		{name: "same time and latitude, jittered longitude", next: [3]float64{1000, 59.5, 18.2}, keep: false},
		{name: "exact duplicate", next: [3]float64{1000, 59.5, 18.1}, keep: true},
		{name: "same time, new latitude", next: [3]float64{1000, 59.6, 18.2}, keep: true},
		{name: "new time, same position", next: [3]float64{2000, 59.5, 18.1}, keep: true},
		{name: "new time and longitude", next: [3]float64{2000, 59.5, 18.2}, keep: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f pointFilter
			assert.True(t, f.keep(1000, 59.5, 18.1))
			assert.Equal(t, tt.keep, f.keep(int64(tt.next[0]), tt.next[1], tt.next[2]))
		})
	}
}

func TestPointFilterRemembersOnlyKeptPoints(t *testing.T) {
	var f pointFilter
	assert.True(t, f.keep(1000, 59.5, 18.1))
	assert.False(t, f.keep(1000, 59.5, 18.2))
	// Compared against the kept point, not the dropped one.
	assert.False(t, f.keep(1000, 59.5, 18.3))
	assert.True(t, f.keep(1000, 59.5, 18.1))
}

func TestPointFilterReset(t *testing.T) {
	var f pointFilter
	assert.True(t, f.keep(1000, 59.5, 18.1))
	f.reset()
	assert.False(t, f.keep(0, 0, 1), "reset state is the origin at time zero")
	assert.True(t, f.keep(1000, 59.5, 18.2))
}
