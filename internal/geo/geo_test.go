package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectUnprojectRoundTrip(t *testing.T) {
	cases := []struct{ lat, lon float64 }{
		{0, 0},
		{45.5, -122.3},
		{-33.9, 151.2},
		{84.9, 179.9},
		{-84.9, -179.9},
	}

	for _, c := range cases {
		p, clamped := Project(c.lat, c.lon)
		assert.False(t, clamped, "unexpected clamp for |lat| < 85")

		lat, lon := Unproject(p)
		assert.InDelta(t, c.lat, lat, 1e-8, "latitude round-trip")
		assert.InDelta(t, c.lon, lon, 1e-8, "longitude round-trip")
	}
}

func TestProjectClampsPolarBand(t *testing.T) {
	_, clamped := Project(89.9, 0)
	assert.True(t, clamped)

	_, clamped = Project(-89.9, 0)
	assert.True(t, clamped)
}

func TestMetersPerPixelHalvesPerZoom(t *testing.T) {
	for z := 0; z < 10; z++ {
		assert.InDelta(t, MetersPerPixel(z)/2, MetersPerPixel(z+1), 1e-6)
	}
}

func TestRectIntersectsEdgeTouch(t *testing.T) {
	a := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := Rect{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}
	assert.True(t, a.Intersects(b), "edge-touching rects must intersect (half-open convention)")
}

func TestRectQuadrantsHalveExtent(t *testing.T) {
	r := Rect{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100}
	quads := r.Quadrants()
	for _, q := range quads {
		assert.InDelta(t, r.Width()/2, q.Width(), 1e-9)
		assert.InDelta(t, r.Height()/2, q.Height(), 1e-9)
		assert.True(t, r.Contains(q))
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// London to Paris, ~343.5km great-circle.
	d := HaversineMeters(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 343500, d, 5000)
}

func TestHaversineZeroForSamePoint(t *testing.T) {
	d := HaversineMeters(10, 20, 10, 20)
	assert.True(t, math.Abs(d) < 1e-9)
}
