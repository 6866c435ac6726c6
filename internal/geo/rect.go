package geo

// Rect is an axis-aligned rectangle in planar meters.
//
// Intersects uses a half-open convention: a rectangle that touches another
// only along an edge is treated as intersecting (spec §8 "Boundary
// behavior"). This keeps segments that sit exactly on a quadtree split
// from being silently dropped by either neighbor's query.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// RectFromPoints returns the tight bounding rectangle of pts.
// Panics if pts is empty; callers are expected to guard on route length.
func RectFromPoints(pts []Point) Rect {
	r := Rect{MinX: pts[0].X, MaxX: pts[0].X, MinY: pts[0].Y, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		r = r.Expand(p)
	}
	return r
}

// Expand returns the smallest rectangle containing r and p.
func (r Rect) Expand(p Point) Rect {
	if p.X < r.MinX {
		r.MinX = p.X
	}
	if p.X > r.MaxX {
		r.MaxX = p.X
	}
	if p.Y < r.MinY {
		r.MinY = p.Y
	}
	if p.Y > r.MaxY {
		r.MaxY = p.Y
	}
	return r
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Contains reports whether other is entirely within r (inclusive).
func (r Rect) Contains(other Rect) bool {
	return other.MinX >= r.MinX && other.MaxX <= r.MaxX &&
		other.MinY >= r.MinY && other.MaxY <= r.MaxY
}

// ContainsPoint reports whether p lies within r (inclusive).
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Intersects reports whether r and other share any area or boundary.
func (r Rect) Intersects(other Rect) bool {
	return !(other.MaxX < r.MinX || other.MinX > r.MaxX ||
		other.MaxY < r.MinY || other.MinY > r.MaxY)
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		MinX: min(r.MinX, other.MinX),
		MinY: min(r.MinY, other.MinY),
		MaxX: max(r.MaxX, other.MaxX),
		MaxY: max(r.MaxY, other.MaxY),
	}
}

// Quadrants splits r into its four equal quadrants, in the fixed order
// {NW, NE, SW, SE}. Every quadtree node's children use this order, which
// is what makes quadrant halving of metric extent (tau(child) =
// tau(parent)/2) exact rather than approximate.
func (r Rect) Quadrants() [4]Rect {
	cx := (r.MinX + r.MaxX) / 2
	cy := (r.MinY + r.MaxY) / 2
	return [4]Rect{
		{MinX: r.MinX, MinY: cy, MaxX: cx, MaxY: r.MaxY}, // NW
		{MinX: cx, MinY: cy, MaxX: r.MaxX, MaxY: r.MaxY}, // NE
		{MinX: r.MinX, MinY: r.MinY, MaxX: cx, MaxY: cy}, // SW
		{MinX: cx, MinY: r.MinY, MaxX: r.MaxX, MaxY: cy}, // SE
	}
}
