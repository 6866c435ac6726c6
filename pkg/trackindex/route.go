package trackindex

import (
	"math"

	"github.com/trackline/geoindex/internal/geo"
	"github.com/trackline/geoindex/internal/lod"
)

// RouteID identifies a route within a Collection. Assignment follows
// input order within a Load batch; IDs are not reused until Clear,
// which restarts numbering at 0.
type RouteID int

// RawTrack is the caller-supplied input to Load: an already-decoded
// sequence of geographic samples. Decoding GPX/FIT/TCX files into a
// RawTrack is the caller's responsibility — this package only consumes
// the result.
type RawTrack struct {
	Points []geo.LatLon
}

// Parser decodes raw bytes into a RawTrack. Implementing one is only
// useful alongside LoadFromParser; Load itself takes already-decoded
// RawTracks and has no opinion on wire formats.
type Parser interface {
	Parse(raw []byte) (RawTrack, error)
}

// Route is an immutable holder of one track's raw and projected
// coordinates, its planar bounding rectangle, and its geodesic length.
// Once constructed a Route never changes; Collection shares Routes
// freely across concurrent queries without locking.
type Route struct {
	id         RouteID
	geographic []geo.LatLon
	projected  []geo.Point
	bbox       geo.Rect
	lengthM    float64
	ladder     *lod.Ladder
}

// newRoute projects track's points, computes its bounding rectangle and
// geodesic length, and returns the resulting Route. Returns
// ErrEmptyRoute if fewer than two points remain, or *ErrInvalidCoordinate
// for the first sample that isn't finite.
func newRoute(id RouteID, track RawTrack) (*Route, error) {
	if len(track.Points) < 2 {
		return nil, ErrEmptyRoute
	}

	projected := make([]geo.Point, len(track.Points))
	for i, ll := range track.Points {
		if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lon) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lon, 0) {
			return nil, &ErrInvalidCoordinate{Lat: ll.Lat, Lon: ll.Lon}
		}
		p, _ := geo.Project(ll.Lat, ll.Lon)
		projected[i] = p
	}

	length := 0.0
	for i := 1; i < len(track.Points); i++ {
		a, b := track.Points[i-1], track.Points[i]
		length += geo.HaversineMeters(a.Lat, a.Lon, b.Lat, b.Lon)
	}

	route := &Route{
		id:         id,
		geographic: track.Points,
		projected:  projected,
		bbox:       geo.RectFromPoints(projected),
		lengthM:    length,
	}
	route.ladder = lod.Build(projected)
	return route, nil
}

// ID returns the route's identity within its Collection.
func (r *Route) ID() RouteID { return r.id }

// Bbox returns the route's planar bounding rectangle.
func (r *Route) Bbox() geo.Rect { return r.bbox }

// PointCount returns the number of raw points in the route.
func (r *Route) PointCount() int { return len(r.projected) }

// Geographic returns the WGS84 sample at raw index i.
func (r *Route) Geographic(i int) geo.LatLon { return r.geographic[i] }

// Projected returns the planar sample at raw index i.
func (r *Route) Projected(i int) geo.Point { return r.projected[i] }

// LengthMeters returns the route's total geodesic (haversine) length.
func (r *Route) LengthMeters() float64 { return r.lengthM }

// LODDepth returns the number of levels in the route's LOD ladder.
func (r *Route) LODDepth() int { return r.ladder.Depth() }

// KeptIndices returns the raw point indices kept at the given LOD
// level, ascending, always including both endpoints. Combined with a
// Segment's First/Last, this tells a renderer exactly which points
// between the two to draw: every kept index in [First, Last].
func (r *Route) KeptIndices(level int) []int { return r.ladder.Kept(level) }

// TargetLevel returns the coarsest LOD level whose tolerance still
// satisfies epsilonQuery, per the same rule Collection.Query uses.
func (r *Route) TargetLevel(epsilonQuery float64) int { return r.ladder.TargetLevel(epsilonQuery) }
