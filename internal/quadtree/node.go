package quadtree

import "github.com/trackline/geoindex/internal/geo"

// node is one quadtree cell. A leaf stores segments directly; an
// internal node has exactly four children (geo.Rect.Quadrants order:
// NW, NE, SW, SE) and may still hold segments of its own — those whose
// bounding box straddles more than one child, or whose LOD tolerance is
// coarser than the containing child's tau.
type node struct {
	bounds geo.Rect
	tau    float64

	children *[4]*node
	segments []Segment
}

// tauFor returns the pixel tolerance of a node spanning bounds: the
// metric distance one pixel represents at this node's extent, against
// the tree's reference viewport width. Its absolute value doesn't
// matter for correctness on its own — only that every node in a given
// tree is measured against the same reference. The epsilons tau is
// compared against (segment and query tolerances) do not involve the
// reference width at all. What
// must hold is that tau halves exactly every time a node's extent
// halves, which follows from node.bounds always being produced by
// geo.Rect.Quadrants.
func tauFor(bounds geo.Rect, referenceViewportPixels float64) float64 {
	return bounds.Width() / referenceViewportPixels
}

func newLeaf(bounds geo.Rect, referenceViewportPixels float64) *node {
	return &node{bounds: bounds, tau: tauFor(bounds, referenceViewportPixels)}
}

// isLeaf reports whether n has been subdivided.
func (n *node) isLeaf() bool {
	return n.children == nil
}

// childForBounds returns the index (NW=0, NE=1, SW=2, SE=3) of the
// first of quads that fully contains bbox, or -1 if bbox straddles more
// than one quadrant.
func childForBounds(quads [4]geo.Rect, bbox geo.Rect) int {
	for i, q := range quads {
		if q.Contains(bbox) {
			return i
		}
	}
	return -1
}
