// Package routebounds indexes whole-route bounding boxes with an R-tree,
// for the coarse "which routes overlap this region" diagnostic query —
// a much cheaper question than a segment-level viewport query, and one
// an R-tree (rather than the earth-rooted quadtree) answers naturally
// since it only ever needs to hold one rectangle per route.
package routebounds

import (
	"github.com/dhconnelly/rtreego"

	"github.com/trackline/geoindex/internal/geo"
)

// minExtent floors a bounding box's width/height before handing it to
// rtreego, which rejects degenerate (zero-length) rectangles. A route
// with a single point, or a string of duplicate points, would otherwise
// produce one.
const minExtent = 1e-6

// Entry associates a route with its planar bounding box.
type Entry struct {
	RouteID int
	BBox    geo.Rect
}

// Bounds implements rtreego.Spatial.
func (e Entry) Bounds() rtreego.Rect {
	w := e.BBox.Width()
	if w < minExtent {
		w = minExtent
	}
	h := e.BBox.Height()
	if h < minExtent {
		h = minExtent
	}
	r, err := rtreego.NewRect(rtreego.Point{e.BBox.MinX, e.BBox.MinY}, []float64{w, h})
	if err != nil {
		// Only NewRect's own degenerate-length check can fail here, and
		// that's already guarded above.
		panic(err)
	}
	return r
}

// Index is an R-tree over route bounding boxes.
type Index struct {
	rtree   *rtreego.Rtree
	entries int
}

// Build indexes entries. The (25, 50) min/max children match rtreego's
// own recommended defaults for small-to-medium collections; a
// deployment indexing millions of routes would want these tuned.
func Build(entries []Entry) *Index {
	rtree := rtreego.NewTree(2, 25, 50)
	for _, e := range entries {
		rtree.Insert(e)
	}
	return &Index{rtree: rtree, entries: len(entries)}
}

// Len returns the number of routes indexed.
func (idx *Index) Len() int { return idx.entries }

// Overlapping returns the RouteIDs of every route whose bounding box
// intersects bbox.
func (idx *Index) Overlapping(bbox geo.Rect) []int {
	w := bbox.Width()
	if w < minExtent {
		w = minExtent
	}
	h := bbox.Height()
	if h < minExtent {
		h = minExtent
	}
	r, err := rtreego.NewRect(rtreego.Point{bbox.MinX, bbox.MinY}, []float64{w, h})
	if err != nil {
		panic(err)
	}

	spatials := idx.rtree.SearchIntersect(r)
	ids := make([]int, 0, len(spatials))
	for _, s := range spatials {
		ids = append(ids, s.(Entry).RouteID)
	}
	return ids
}
