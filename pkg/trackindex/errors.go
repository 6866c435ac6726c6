package trackindex

import (
	"errors"
	"fmt"
)

// ErrEmptyRoute indicates a track had fewer than two valid samples after
// construction and cannot form a route.
var ErrEmptyRoute = errors.New("trackindex: route needs at least two points")

// ErrInvalidCoordinate indicates a coordinate whose latitude or
// longitude is non-finite (NaN or infinite). Latitudes outside the
// projection's band are clamped by geo.Project and do not produce it.
type ErrInvalidCoordinate struct {
	Lat, Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("trackindex: invalid coordinate: lat=%f lon=%f", e.Lat, e.Lon)
}

// ErrParse re-surfaces a collaborator Parser's failure, attributing it
// to its position in the batch that was being loaded.
type ErrParse struct {
	Index int
	Cause error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("trackindex: parse batch item %d: %v", e.Index, e.Cause)
}

func (e *ErrParse) Unwrap() error { return e.Cause }
