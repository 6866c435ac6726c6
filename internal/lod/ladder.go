// Package lod builds a route's level-of-detail ladder: a sequence of
// index subsets, one per LOD level, each a Visvalingam-Whyatt
// simplification of the previous level at a doubling metric tolerance.
package lod

import (
	"sort"

	"github.com/trackline/geoindex/internal/geo"
)

// Level is one rung of the LOD ladder: the sorted, strictly-ascending
// indices kept at this level, and the metric tolerance epsilon(L) that
// produced them.
type Level struct {
	Kept    []int
	Epsilon float64
}

// Ladder is the full sequence of Levels for one route, finest (level 0,
// every point) first, coarsest (the two endpoints) last.
type Ladder struct {
	levels []Level
}

// Levels returns the ladder's levels in order, finest first.
func (l *Ladder) Levels() []Level { return l.levels }

// Epsilon returns epsilon(L), or the coarsest level's epsilon if L
// exceeds the ladder's depth.
func (l *Ladder) Epsilon(level int) float64 {
	if level < 0 {
		level = 0
	}
	if level >= len(l.levels) {
		level = len(l.levels) - 1
	}
	return l.levels[level].Epsilon
}

// Kept returns the kept-index subset at the given level, clamped to the
// ladder's depth the same way Epsilon is.
func (l *Ladder) Kept(level int) []int {
	if level < 0 {
		level = 0
	}
	if level >= len(l.levels) {
		level = len(l.levels) - 1
	}
	return l.levels[level].Kept
}

// Depth returns the number of levels in the ladder.
func (l *Ladder) Depth() int { return len(l.levels) }

// TargetLevel returns the largest L such that epsilon(L) <= epsilonQuery
// — the coarsest simplification that still satisfies the requested
// tolerance (spec §4.5: "finer is wasted detail; coarser is
// insufficient"). If no level satisfies the bound (the viewport is
// zoomed in closer than even the finest level provides), level 0 is
// returned: the best detail available, per spec §9's instruction to
// decide undocumented edge cases rather than guess at the source's
// intent. If every level satisfies the bound (zoomed out beyond the
// coarsest), the coarsest level is returned, which falls out naturally
// from taking the largest qualifying L.
func (l *Ladder) TargetLevel(epsilonQuery float64) int {
	best := -1
	for i, lvl := range l.levels {
		if lvl.Epsilon <= epsilonQuery {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// Build computes the LOD ladder for a route's projected polyline.
//
// Level 0 is the identity mapping 0..N-1. Each subsequent level applies
// Visvalingam-Whyatt to the previous level's kept subset at twice the
// previous level's tolerance (doubled again, as many times as needed,
// when a doubling removes no point), stopping once only the two
// endpoints remain. epsilon0 is
// the median effective area of the route's consecutive raw-point
// triples — the finest tolerance for which simplification is non-trivial
// for this particular route's point density — floored at a small
// constant so a degenerate (collinear or duplicate-point) route still
// produces a usable ladder instead of an infinite run of no-op levels.
func Build(points []geo.Point) *Ladder {
	n := len(points)
	full := make([]int, n)
	for i := range full {
		full[i] = i
	}

	if n <= 2 {
		return &Ladder{levels: []Level{{Kept: full, Epsilon: 0}}}
	}

	epsilon0 := medianConsecutiveArea(points)

	levels := []Level{{Kept: full, Epsilon: epsilon0}}
	kept := full
	epsilon := epsilon0

	for len(kept) > 2 {
		epsilon *= 2 // epsilon(L+1) = epsilon(L) * 2
		next := simplify(kept, points, epsilon)

		// No further reduction at this tolerance; doubling once more would
		// just repeat the same simplification. Force progress by doubling
		// until something changes, or only the two endpoints remain.
		for len(next) == len(kept) && len(next) > 2 {
			epsilon *= 2
			next = simplify(kept, points, epsilon)
		}

		kept = next
		levels = append(levels, Level{Kept: kept, Epsilon: epsilon})
	}

	return &Ladder{levels: levels}
}

// medianConsecutiveArea returns the median effective area among every
// triple of consecutive raw points, used as epsilon0 (spec §4.3
// "Rationale"). Degenerate routes (collinear or duplicate points) yield
// an area of zero for most or all triples; a small positive floor keeps
// the ladder from looping forever at epsilon=0.
func medianConsecutiveArea(points []geo.Point) float64 {
	const floor = 1e-6 // m^2; effectively "no area" at GPS precision

	n := len(points)
	if n < 3 {
		return floor
	}

	areas := make([]float64, 0, n-2)
	for i := 1; i < n-1; i++ {
		areas = append(areas, effectiveArea(points[i-1], points[i], points[i+1]))
	}

	sort.Float64s(areas)
	mid := areas[len(areas)/2]
	if mid < floor {
		return floor
	}
	return mid
}
