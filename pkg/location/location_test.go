package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	kremlin := Point{Lat: 55.7520, Lon: 37.6175}
	redSquare := Point{Lat: 55.7539, Lon: 37.6208}

	assert.Zero(t, DistanceMeters(kremlin, kremlin))
	assert.InDelta(t, 297, DistanceMeters(kremlin, redSquare), 15)

	// Distance is symmetric.
	assert.InDelta(t, DistanceMeters(kremlin, redSquare), DistanceMeters(redSquare, kremlin), 0.001)

	// One degree of latitude is roughly 111 km.
	equator := Point{Lat: 0, Lon: 0}
	oneDegreeNorth := Point{Lat: 1, Lon: 0}
	assert.InDelta(t, 111195, DistanceMeters(equator, oneDegreeNorth), 100)
}

func TestWithinRadius(t *testing.T) {
	building := Point{Lat: 55.7520, Lon: 37.6175}
	nearby := Point{Lat: 55.7525, Lon: 37.6180}  // ~65 m
	farAway := Point{Lat: 55.7600, Lon: 37.6175} // ~890 m

	assert.True(t, WithinRadius(building, nearby, 100))
	assert.False(t, WithinRadius(building, farAway, 100))
}
