package trackindex

import "runtime"

// Config controls how a Collection builds and queries its index. New
// replaces every zero (or negative) field with its DefaultConfig value,
// so a zero Config behaves like DefaultConfig; DefaultConfig is the
// starting point for overriding individual fields, mirroring the
// teacher's ParseOptions/DefaultParseOptions pattern.
type Config struct {
	// MaxPointsPerNode bounds how many points' worth of segments a
	// quadtree leaf holds before it's considered for subdivision.
	MaxPointsPerNode int

	// ReferenceViewportWidth, in pixels, is the notional viewport every
	// node's tau is measured against. A query's epsilonQuery does not
	// depend on it.
	//
	// ReferenceViewportHeight is accepted and normalized alongside it for
	// API symmetry with a caller's actual viewport dimensions, but is
	// currently unused: quadtree nodes are always square, so only the
	// width feeds tau.
	ReferenceViewportWidth  int
	ReferenceViewportHeight int

	// Bias is the default detail multiplier, normalized (zero becomes
	// DefaultBias) and clamped to [0.1, 10.0]. Collection.Query does not
	// read it: epsilonQuery = bias * geo.MetersPerPixel(zoom) uses the
	// bias passed to Query, which is clamped the same way. Values below 1
	// request more detail than the zoom level strictly implies, above 1
	// request less.
	Bias float64

	// Workers bounds how many routes Load builds concurrently. Zero
	// means runtime.NumCPU().
	Workers int
}

const (
	// DefaultBias is the neutral Bias value: epsilonQuery exactly
	// matches the viewport's own pixel resolution.
	DefaultBias = 1.0

	minBias = 0.1
	maxBias = 10.0
)

// DefaultConfig returns the Config used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxPointsPerNode:        100,
		ReferenceViewportWidth:  1920,
		ReferenceViewportHeight: 1080,
		Bias:                    DefaultBias,
		Workers:                 runtime.NumCPU(),
	}
}

// clampBias enforces Config.Bias's documented [0.1, 10.0] range.
func clampBias(bias float64) float64 {
	switch {
	case bias < minBias:
		return minBias
	case bias > maxBias:
		return maxBias
	default:
		return bias
	}
}

func (c Config) normalized() Config {
	if c.MaxPointsPerNode <= 0 {
		c.MaxPointsPerNode = DefaultConfig().MaxPointsPerNode
	}
	if c.ReferenceViewportWidth <= 0 {
		c.ReferenceViewportWidth = DefaultConfig().ReferenceViewportWidth
	}
	if c.ReferenceViewportHeight <= 0 {
		c.ReferenceViewportHeight = DefaultConfig().ReferenceViewportHeight
	}
	if c.Bias == 0 {
		c.Bias = DefaultBias
	}
	c.Bias = clampBias(c.Bias)
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}
