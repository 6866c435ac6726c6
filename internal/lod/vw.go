package lod

import (
	"container/heap"

	"github.com/trackline/geoindex/internal/geo"
)

// effectiveArea returns the area of the triangle formed by three
// consecutive points, using the planar cross-product formula. This is the
// Visvalingam-Whyatt "effective area" metric: a point contributes less to
// a polyline's shape the smaller the triangle it forms with its
// neighbors.
func effectiveArea(a, b, c geo.Point) float64 {
	area := a.Sub(b).Cross(c.Sub(b))
	if area < 0 {
		area = -area
	}
	return area / 2
}

// vwPoint tracks one point's position in the simplification queue: its
// index into the original slice, and live links to its current
// neighbors so area can be recomputed as points are removed.
type vwPoint struct {
	index      int
	prev, next *vwPoint
	area       float64
	removed    bool
	heapIndex  int
}

// vwQueue is a min-heap of *vwPoint ordered by effective area, the
// classic Visvalingam-Whyatt priority queue: the point with the smallest
// effective area is always removed next.
type vwQueue []*vwPoint

func (q vwQueue) Len() int            { return len(q) }
func (q vwQueue) Less(i, j int) bool  { return q[i].area < q[j].area }
func (q vwQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].heapIndex = i
	q[j].heapIndex = j
}
func (q *vwQueue) Push(x any) {
	p := x.(*vwPoint)
	p.heapIndex = len(*q)
	*q = append(*q, p)
}
func (q *vwQueue) Pop() any {
	old := *q
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return p
}

// simplify runs Visvalingam-Whyatt over the points at the given original
// indices (already sorted ascending, as every LOD level's kept subset
// is), removing points whose effective area is below tolerance, and
// always retaining the first and last index.
//
// Returns the surviving indices, still sorted ascending: a subset of the
// input, equal to the whole input when no interior point's effective
// area is below tolerance.
func simplify(indices []int, points []geo.Point, tolerance float64) []int {
	if len(indices) <= 2 {
		return indices
	}

	nodes := make([]*vwPoint, len(indices))
	for i, idx := range indices {
		nodes[i] = &vwPoint{index: idx}
	}
	for i := range nodes {
		if i > 0 {
			nodes[i].prev = nodes[i-1]
		}
		if i < len(nodes)-1 {
			nodes[i].next = nodes[i+1]
		}
	}

	q := make(vwQueue, 0, len(nodes)-2)
	for i := 1; i < len(nodes)-1; i++ {
		n := nodes[i]
		n.area = effectiveArea(points[n.prev.index], points[n.index], points[n.next.index])
		q = append(q, n)
	}
	for i := range q {
		q[i].heapIndex = i
	}
	heap.Init(&q)

	// minEverRemoved enforces VW's monotonicity rule: a point's recorded
	// area must never be allowed to fall below the area of a point already
	// removed, or simplification could undo earlier decisions out of order.
	minEverRemoved := 0.0

	for q.Len() > 0 {
		cheapest := q[0]
		if cheapest.area >= tolerance {
			break
		}
		heap.Pop(&q)
		cheapest.removed = true

		if cheapest.area > minEverRemoved {
			minEverRemoved = cheapest.area
		}

		prev, next := cheapest.prev, cheapest.next
		prev.next = next
		next.prev = prev

		if prev.prev != nil {
			newArea := effectiveArea(points[prev.prev.index], points[prev.index], points[next.index])
			if newArea < minEverRemoved {
				newArea = minEverRemoved
			}
			prev.area = newArea
			heap.Fix(&q, prev.heapIndex)
		}
		if next.next != nil {
			newArea := effectiveArea(points[prev.index], points[next.index], points[next.next.index])
			if newArea < minEverRemoved {
				newArea = minEverRemoved
			}
			next.area = newArea
			heap.Fix(&q, next.heapIndex)
		}
	}

	kept := make([]int, 0, len(nodes))
	for _, n := range nodes {
		if !n.removed {
			kept = append(kept, n.index)
		}
	}
	return kept
}
