package trackindex

import (
	"github.com/trackline/geoindex/internal/geo"
	"github.com/trackline/geoindex/internal/lod"
	"github.com/trackline/geoindex/internal/quadtree"
)

// Segment is a contiguous run of a route's kept points at one LOD
// level, referenced by index rather than by copied coordinates.
// Resolve First/Last (and the context indices, when present) back
// through the owning Route's Projected/Geographic accessors.
type Segment struct {
	RouteID RouteID
	LOD     int

	// First and Last are raw point indices into the owning route: the
	// first and last kept point of this run, in original point order.
	// First < Last.
	First, Last int

	HasLeftContext  bool
	LeftContext     int
	HasRightContext bool
	RightContext    int

	BBox geo.Rect
}

func segmentFromQuadtree(s quadtree.Segment) Segment {
	return Segment{
		RouteID:         RouteID(s.RouteID),
		LOD:             s.LOD,
		First:           s.First,
		Last:            s.Last,
		HasLeftContext:  s.HasLeftContext,
		LeftContext:     s.LeftContext,
		HasRightContext: s.HasRightContext,
		RightContext:    s.RightContext,
		BBox:            s.BBox,
	}
}

// chunkKept splits a single LOD level's ascending kept-index list into
// disjoint contiguous runs of at most chunkLen indices, so a level
// covering an entire (potentially very long) route doesn't collapse
// into one segment whose bounding box spans the whole route and gets
// stuck near the quadtree root. A run that would end up a single index
// long is folded into the previous run instead, since a Segment
// requires First < Last; that last run then holds chunkLen+1 indices.
func chunkKept(kept []int, chunkLen int) [][2]int {
	n := len(kept)
	if n <= 2 {
		return [][2]int{{0, n - 1}}
	}
	if chunkLen < 2 {
		chunkLen = 2
	}

	var ranges [][2]int
	start := 0
	for start < n {
		end := start + chunkLen - 1
		if end >= n-1 {
			ranges = append(ranges, [2]int{start, n - 1})
			break
		}
		ranges = append(ranges, [2]int{start, end})
		start = end + 1
	}

	if len(ranges) >= 2 {
		last := ranges[len(ranges)-1]
		if last[0] == last[1] {
			ranges[len(ranges)-2][1] = last[1]
			ranges = ranges[:len(ranges)-1]
		}
	}
	return ranges
}

// buildSegments turns a route's full LOD ladder into the quadtree
// Segments that represent it: one chunked run per (level, range) pair,
// each carrying the bounding box of its own kept points and boundary
// context indices pointing to the kept point immediately outside the
// run at the same LOD, when one exists. First/Last/context fields are
// all raw point indices into route, not positions within kept.
func buildSegments(routeID RouteID, route *Route, ladder *lod.Ladder, maxPointsPerNode int) []quadtree.Segment {
	var out []quadtree.Segment

	for level, lv := range ladder.Levels() {
		kept := lv.Kept
		for _, rng := range chunkKept(kept, maxPointsPerNode) {
			a, b := rng[0], rng[1]

			bbox := geo.RectFromPoints(pointsAt(route, kept[a:b+1]))

			seg := quadtree.Segment{
				RouteID:  int(routeID),
				LOD:      level,
				EpsilonL: lv.Epsilon,
				First:    kept[a],
				Last:     kept[b],
				BBox:     bbox,
			}
			if a > 0 {
				seg.HasLeftContext = true
				seg.LeftContext = kept[a-1]
			}
			if b < len(kept)-1 {
				seg.HasRightContext = true
				seg.RightContext = kept[b+1]
			}

			out = append(out, seg)
		}
	}

	return out
}

func pointsAt(route *Route, indices []int) []geo.Point {
	pts := make([]geo.Point, len(indices))
	for i, idx := range indices {
		pts[i] = route.Projected(idx)
	}
	return pts
}
