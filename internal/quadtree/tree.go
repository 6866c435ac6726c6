// Package quadtree implements the earth-rooted adaptive quadtree that
// indexes every route's simplified segments by location and level of
// detail. The root always spans the full projected earth square,
// independent of what data has been loaded; subdivision is driven by a
// node's pixel tolerance (tau) against the epsilon a segment's LOD
// level requires, not by a fixed depth bound or point density alone.
package quadtree

import "github.com/trackline/geoindex/internal/geo"

// DefaultMaxPointsPerNode bounds how many points' worth of segments a
// leaf holds before the tree considers subdividing it further.
const DefaultMaxPointsPerNode = 100

// DefaultReferenceViewportPixels is the notional viewport width, in
// pixels, tau is measured against when a Config doesn't specify one.
const DefaultReferenceViewportPixels = 1920.0

// Config controls tree construction.
type Config struct {
	// MaxPointsPerNode is the point-count threshold at which a leaf is
	// considered for subdivision. Zero means DefaultMaxPointsPerNode.
	MaxPointsPerNode int

	// ReferenceViewportPixels is the viewport width every node's tau is
	// measured against. Zero means DefaultReferenceViewportPixels.
	ReferenceViewportPixels float64
}

// DefaultConfig returns the Config used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxPointsPerNode:        DefaultMaxPointsPerNode,
		ReferenceViewportPixels: DefaultReferenceViewportPixels,
	}
}

// Tree is an earth-rooted adaptive quadtree of Segments.
type Tree struct {
	root   *node
	maxPts int
	ref    float64
}

// New builds an empty tree rooted at the full projected earth square
// ([-geo.EarthHalfExtent, geo.EarthHalfExtent] on both axes), regardless
// of what data will eventually be inserted.
func New(cfg Config) *Tree {
	maxPts := cfg.MaxPointsPerNode
	if maxPts <= 0 {
		maxPts = DefaultMaxPointsPerNode
	}
	ref := cfg.ReferenceViewportPixels
	if ref <= 0 {
		ref = DefaultReferenceViewportPixels
	}
	bounds := geo.Rect{
		MinX: -geo.EarthHalfExtent, MinY: -geo.EarthHalfExtent,
		MaxX: geo.EarthHalfExtent, MaxY: geo.EarthHalfExtent,
	}
	return &Tree{root: newLeaf(bounds, ref), maxPts: maxPts, ref: ref}
}

// RootBounds exposes the root's bounds, mostly for tests and diagnostics.
func (t *Tree) RootBounds() geo.Rect { return t.root.bounds }

func segmentPoints(s Segment) int { return s.Last - s.First + 1 }

// Insert adds a segment to the tree, descending as deep as the
// segment's own LOD tolerance warrants: a node only routes a segment
// into one of its children when that child's tau is still at least as
// coarse as the segment's epsilon, so a segment is never buried deeper
// than queries at its own LOD would ever need to look for it.
func (t *Tree) Insert(s Segment) {
	insertAt(t.root, s, t.maxPts, t.ref)
}

func insertAt(n *node, s Segment, maxPts int, ref float64) {
	for {
		if n.isLeaf() {
			n.segments = append(n.segments, s)
			maybeSubdivide(n, maxPts, ref)
			return
		}

		quads := n.children
		idx := childForBounds(n.bounds.Quadrants(), s.BBox)
		if idx < 0 {
			// Straddles more than one child: this is as deep as the
			// segment can usefully go.
			n.segments = append(n.segments, s)
			return
		}

		child := quads[idx]
		if child.tau < s.EpsilonL {
			// Descending further would put the segment in a node whose
			// resolution exceeds what its own LOD ever needs.
			n.segments = append(n.segments, s)
			return
		}

		n = child
	}
}

// maybeSubdivide converts a leaf into an internal node once its payload
// exceeds maxPts points, but only if subdividing would actually help —
// i.e. some resident segment's epsilon is finer than the node's own
// tau, meaning a child (with half the tau) could still usefully hold
// it. A leaf whose segments are all already coarser than its own tau is
// left as a "bounded leaf at maximum useful resolution": further
// subdivision would just relocate the same segments one level down for
// no pruning benefit.
func maybeSubdivide(n *node, maxPts int, ref float64) {
	total := 0
	finer := false
	for _, s := range n.segments {
		total += segmentPoints(s)
		if n.tau > s.EpsilonL {
			finer = true
		}
	}
	if total <= maxPts || !finer {
		return
	}

	quads := n.bounds.Quadrants()
	children := [4]*node{
		newLeaf(quads[0], ref), newLeaf(quads[1], ref), newLeaf(quads[2], ref), newLeaf(quads[3], ref),
	}

	pending := n.segments
	n.segments = nil
	n.children = &children

	for _, s := range pending {
		insertAt(n, s, maxPts, ref)
	}
}
