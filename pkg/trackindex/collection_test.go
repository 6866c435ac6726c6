package trackindex

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackline/geoindex/internal/geo"
)

func wigglyTrack(seed int64, n int, originLat, originLon float64) RawTrack {
	rnd := rand.New(rand.NewSource(seed))
	pts := make([]geo.LatLon, n)
	lat, lon := originLat, originLon
	for i := 0; i < n; i++ {
		lat += 0.0005 + rnd.Float64()*0.0002
		lon += 0.0003 + (rnd.Float64()-0.5)*0.0004
		pts[i] = geo.LatLon{Lat: lat, Lon: lon}
	}
	return RawTrack{Points: pts}
}

func TestCollectionLoadAndQueryRoundTrip(t *testing.T) {
	col := New(DefaultConfig())
	batch := []RawTrack{
		wigglyTrack(1, 300, 37.0, -122.0),
		wigglyTrack(2, 150, 40.0, -74.0),
	}

	outcome := col.Load(context.Background(), batch)
	require.Empty(t, outcome.Failed)
	require.Len(t, outcome.Succeeded, 2)

	stats := col.Stats()
	assert.Equal(t, 2, stats.RouteCount)
	assert.Equal(t, 450, stats.PointCount)

	route0, ok := col.Route(outcome.Succeeded[0])
	require.True(t, ok)

	world := geo.Rect{
		MinX: -geo.EarthHalfExtent, MinY: -geo.EarthHalfExtent,
		MaxX: geo.EarthHalfExtent, MaxY: geo.EarthHalfExtent,
	}
	result := col.Query(world, DefaultBias, 10)
	assert.NotEmpty(t, result.Segments)

	foundRoute0 := false
	for _, seg := range result.Segments {
		if seg.RouteID == route0.ID() {
			foundRoute0 = true
		}
	}
	assert.True(t, foundRoute0)
}

func TestCollectionLoadRecordsPartialFailures(t *testing.T) {
	col := New(DefaultConfig())
	batch := []RawTrack{
		wigglyTrack(1, 50, 10, 10),
		{Points: []geo.LatLon{{Lat: 1, Lon: 1}}}, // too short
		wigglyTrack(2, 50, 20, 20),
	}

	outcome := col.Load(context.Background(), batch)
	require.Len(t, outcome.Succeeded, 2)
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, 1, outcome.Failed[0].Index)
	assert.ErrorIs(t, outcome.Failed[0].Err, ErrEmptyRoute)
}

func TestCollectionQueryNarrowRectExcludesDistantRoutes(t *testing.T) {
	col := New(DefaultConfig())

	outcome := col.Load(context.Background(), []RawTrack{
		wigglyTrack(1, 100, 37.0, -122.0),
		wigglyTrack(2, 100, -33.9, 151.2), // Sydney, far away
	})
	require.Len(t, outcome.Succeeded, 2)

	sf, _ := geo.Project(37.0, -122.0)
	near := geo.Rect{MinX: sf.X - 5000, MinY: sf.Y - 5000, MaxX: sf.X + 5000, MaxY: sf.Y + 5000}

	result := col.Query(near, DefaultBias, 16)
	sydneyRoute := outcome.Succeeded[1]
	for _, seg := range result.Segments {
		assert.NotEqual(t, sydneyRoute, seg.RouteID)
	}
}

func TestCollectionClearResetsState(t *testing.T) {
	col := New(DefaultConfig())
	col.Load(context.Background(), []RawTrack{wigglyTrack(1, 50, 1, 1)})
	require.Equal(t, 1, col.Stats().RouteCount)

	col.Clear()
	assert.Equal(t, 0, col.Stats().RouteCount)

	world := geo.Rect{MinX: -geo.EarthHalfExtent, MinY: -geo.EarthHalfExtent, MaxX: geo.EarthHalfExtent, MaxY: geo.EarthHalfExtent}
	result := col.Query(world, DefaultBias, 10)
	assert.Empty(t, result.Segments)
}

func TestCollectionRoutesOverlapping(t *testing.T) {
	col := New(DefaultConfig())
	outcome := col.Load(context.Background(), []RawTrack{
		wigglyTrack(1, 50, 37.0, -122.0),
		wigglyTrack(2, 50, -33.9, 151.2),
	})
	require.Len(t, outcome.Succeeded, 2)

	route0, _ := col.Route(outcome.Succeeded[0])
	bbox := route0.Bbox()
	overlapping := col.RoutesOverlapping(bbox)
	assert.Contains(t, overlapping, route0.ID())
}

func TestCollectionLoadCancellation(t *testing.T) {
	col := New(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := []RawTrack{wigglyTrack(1, 50, 1, 1)}
	outcome := col.Load(ctx, batch)
	assert.Empty(t, outcome.Succeeded)
	require.Len(t, outcome.Failed, 1)
	assert.ErrorIs(t, outcome.Failed[0].Err, context.Canceled)
}

// TestCollinearRouteSingleSegmentAtCoarseQuery reproduces spec.md §8
// end-to-end scenario #1: ten collinear points; every LOD level >= 1
// collapses to the two endpoints; a coarse query returns one segment
// spanning them.
func TestCollinearRouteSingleSegmentAtCoarseQuery(t *testing.T) {
	col := New(DefaultConfig())

	pts := make([]geo.LatLon, 10)
	for i := range pts {
		pts[i] = geo.LatLon{Lat: float64(i) * 0.001, Lon: 0.0}
	}

	outcome := col.Load(context.Background(), []RawTrack{{Points: pts}})
	require.Empty(t, outcome.Failed)
	require.Len(t, outcome.Succeeded, 1)

	route, ok := col.Route(outcome.Succeeded[0])
	require.True(t, ok)
	for level := 1; level < route.LODDepth(); level++ {
		assert.Equal(t, []int{0, 9}, route.KeptIndices(level))
	}

	// Pick a zoom/bias pair whose epsilonQuery lands at ~10,000m, per the
	// scenario's literal tolerance.
	zoom := 4
	bias := 10000.0 / geo.MetersPerPixel(zoom)

	world := geo.Rect{
		MinX: -geo.EarthHalfExtent, MinY: -geo.EarthHalfExtent,
		MaxX: geo.EarthHalfExtent, MaxY: geo.EarthHalfExtent,
	}
	result := col.Query(world, bias, zoom)

	require.Len(t, result.Segments, 1)
	assert.Equal(t, 0, result.Segments[0].First)
	assert.Equal(t, 9, result.Segments[0].Last)
}

// TestCollectionQueryLargeRouteIsFastAndRetainsDetail reproduces spec.md
// §8 end-to-end scenario #3: a 10,000-point route queried at maximum
// zoom must come back in well under 100ms and retain at least 95% of the
// raw points.
func TestCollectionQueryLargeRouteIsFastAndRetainsDetail(t *testing.T) {
	col := New(DefaultConfig())

	const n = 10000
	track := wigglyTrack(1, n, 0, 0)
	outcome := col.Load(context.Background(), []RawTrack{track})
	require.Empty(t, outcome.Failed)
	require.Len(t, outcome.Succeeded, 1)

	route, ok := col.Route(outcome.Succeeded[0])
	require.True(t, ok)
	bbox := route.Bbox()
	// Pad generously so every chunked segment's bounding box is covered.
	viewport := geo.Rect{
		MinX: bbox.MinX - 1000, MinY: bbox.MinY - 1000,
		MaxX: bbox.MaxX + 1000, MaxY: bbox.MaxY + 1000,
	}

	result := col.Query(viewport, DefaultBias, 22) // max zoom: finest detail
	assert.Less(t, result.Elapsed, 100*time.Millisecond)

	retained := 0
	for _, seg := range result.Segments {
		retained += seg.Last - seg.First + 1
	}
	assert.GreaterOrEqual(t, float64(retained), 0.95*float64(n))
}

// TestCollectionLoadCancellationMidBatchKeepsOnlyCompletedRoute
// reproduces spec.md §8 end-to-end scenario #6: cancellation signaled
// right after the first route finishes building must land that route
// and fail every other batch item with context.Canceled, leaving no
// trace of them in the collection.
func TestCollectionLoadCancellationMidBatchKeepsOnlyCompletedRoute(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1 // force strictly sequential builds
	col := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	col.onItemBuilt = func(index int) {
		if index == 0 {
			cancel()
		}
	}

	batch := []RawTrack{
		wigglyTrack(1, 50, 1, 1),
		wigglyTrack(2, 50, 2, 2),
		wigglyTrack(3, 50, 3, 3),
	}
	outcome := col.Load(ctx, batch)

	require.Equal(t, []RouteID{0}, outcome.Succeeded)
	require.Len(t, outcome.Failed, 2)
	for _, f := range outcome.Failed {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}

	assert.Equal(t, 1, col.Stats().RouteCount)
	_, ok := col.Route(1)
	assert.False(t, ok)
	_, ok = col.Route(2)
	assert.False(t, ok)
}

// TestCollectionConcurrentLoadAndQueryNeverBlocksOnMerge guards against
// Query being serialized behind commit's (potentially expensive) merge
// and route-bounds rebuild: a Query issued while a large Load is
// in-flight must return well before that Load finishes.
func TestCollectionConcurrentLoadAndQueryNeverBlocksOnMerge(t *testing.T) {
	col := New(DefaultConfig())

	// Seed enough routes that ParallelMerge has real work to do on every
	// subsequent commit.
	seed := make([]RawTrack, 0, 20)
	for i := 0; i < 20; i++ {
		seed = append(seed, wigglyTrack(int64(i), 2000, float64(i), float64(i)))
	}
	require.Empty(t, col.Load(context.Background(), seed).Failed)

	batch := make([]RawTrack, 0, 20)
	for i := 20; i < 40; i++ {
		batch = append(batch, wigglyTrack(int64(i), 2000, float64(i), float64(i)))
	}

	var wg sync.WaitGroup
	loadDone := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(loadDone)
		col.Load(context.Background(), batch)
	}()

	world := geo.Rect{
		MinX: -geo.EarthHalfExtent, MinY: -geo.EarthHalfExtent,
		MaxX: geo.EarthHalfExtent, MaxY: geo.EarthHalfExtent,
	}

	queryStart := time.Now()
	col.Query(world, DefaultBias, 10)
	queryElapsed := time.Since(queryStart)

	select {
	case <-loadDone:
		// The load happened to finish before our query ran at all; the
		// no-blocking property can't be exercised, but it's not a failure.
	default:
		// The load is still in flight: the query must not have waited for
		// it to finish.
		assert.Less(t, queryElapsed, 50*time.Millisecond)
	}

	wg.Wait()
}
