package quadtree

import "github.com/trackline/geoindex/internal/geo"

// Segment is a spatially-indexed reference into one route's simplified
// polyline: a contiguous run of kept point indices at a single LOD level,
// plus the bounding rectangle that run covers. No coordinates are ever
// copied into a Segment; callers dereference First/Last (and the context
// indices) back into the route's own point slice.
type Segment struct {
	RouteID int
	LOD     int
	// EpsilonL is the metric tolerance that produced this segment's LOD
	// level, cached here so the tree can route and prune purely on
	// Segment fields without going back to the owning route's ladder.
	EpsilonL float64

	// First and Last are raw point indices into the owning route — the
	// first and last kept point of this contiguous run, in the route's
	// original point order. First < Last.
	First, Last int

	// HasLeftContext/HasRightContext report whether a boundary anchor
	// exists immediately outside this run at the same LOD, letting a
	// renderer draw a seamless line into off-screen territory without
	// walking back to level 0.
	HasLeftContext  bool
	LeftContext     int
	HasRightContext bool
	RightContext    int

	BBox geo.Rect
}
