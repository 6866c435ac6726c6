// Package geo provides the planar projection and rectangle primitives the
// rest of the index is built on: WGS84<->Web Mercator conversion, the
// reference-viewport pixel-tolerance math, and axis-aligned rectangles.
package geo

import "gonum.org/v1/gonum/spatial/r2"

// Point is a planar coordinate in meters (Web Mercator EPSG:3857).
//
// It is a named type over r2.Vec so the rest of the package can use
// gonum's vector arithmetic directly instead of hand-rolled (x, y) pairs.
type Point r2.Vec

// Vec returns p as a gonum r2.Vec for use with r2's vector functions.
func (p Point) Vec() r2.Vec { return r2.Vec(p) }

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point(r2.Sub(r2.Vec(p), r2.Vec(q)))
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point(r2.Add(r2.Vec(p), r2.Vec(q)))
}

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point {
	return Point(r2.Scale(f, r2.Vec(p)))
}

// Cross returns the z-component of the 3D cross product of p and q,
// treating both as vectors in the plane. Its absolute value is twice the
// area of the triangle formed by the origin, p and q.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// LatLon is a geographic coordinate in WGS84 decimal degrees.
type LatLon struct {
	Lat, Lon float64
}
