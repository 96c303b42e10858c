package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmKnownPairs(t *testing.T) {
	t.Parallel()

	memphis := Point{Lat: 35.1495, Lng: -90.0490}
	nashville := Point{Lat: 36.1627, Lng: -86.7816}

	assert.InDelta(t, 316.0, DistanceKm(memphis, nashville), 1.0)
	assert.Zero(t, DistanceKm(memphis, memphis))
}

func TestDistanceKmSymmetric(t *testing.T) {
	t.Parallel()

	a := Point{Lat: 35.1, Lng: -90.0}
	b := Point{Lat: 35.12, Lng: -90.03}
	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-12)
}

func TestDistanceKmOneDegreeLatitude(t *testing.T) {
	t.Parallel()

	got := DistanceKm(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0})
	assert.InDelta(t, EarthRadiusKm*math.Pi/180, got, 1e-6)
}

func TestValidLatLng(t *testing.T) {
	t.Parallel()

	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{35.1, -90.0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.0001, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidLatLng(tc.lat, tc.lng), "ValidLatLng(%v, %v)", tc.lat, tc.lng)
	}
}
