// Package trackindex is the public entry point to the spatial index: it
// ingests GPS routes, builds their level-of-detail ladders and a shared
// earth-rooted quadtree over their simplified segments, and serves
// viewport queries against a stable, concurrently-readable snapshot.
package trackindex

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trackline/geoindex/internal/geo"
	"github.com/trackline/geoindex/internal/quadtree"
	"github.com/trackline/geoindex/internal/routebounds"
)

// FailedLoad records why one batch item failed to load.
type FailedLoad struct {
	Index int
	Err   error
}

// LoadOutcome is the result of a Load call: every successfully built
// route's ID, and every failure with its offending batch index. A
// partial failure never aborts the rest of the batch.
type LoadOutcome struct {
	Succeeded []RouteID
	Failed    []FailedLoad
}

// QueryResult is the result of a Query call.
type QueryResult struct {
	Segments      []Segment
	SegmentsCount int
	Elapsed       time.Duration
}

// CollectionStats summarizes a Collection's current contents.
type CollectionStats struct {
	RouteCount      int
	PointCount      int
	TotalLengthMeters float64
	LastQueryMillis float64
}

// snapshot is the immutable, atomically-swapped state a Collection
// reads queries against. Building a new one never touches the old one,
// so a query concurrent with a commit sees either the pre- or
// post-load state in full, never a partial merge.
type snapshot struct {
	tree   *quadtree.Tree
	bounds *routebounds.Index
}

// Collection is the orchestrator: parallel load and per-route build,
// parallel merge into one shared quadtree, and a synchronous query API
// that always reads a stable, already-committed snapshot.
type Collection struct {
	cfg Config

	mu              sync.Mutex // guards routes/nextID/totalLen/lastQueryMillis
	routes          map[RouteID]*Route
	nextID          RouteID
	snap            atomicSnapshot
	totalLen        float64
	lastQueryMillis float64

	// commitMu serializes commit's merge-and-publish step across
	// concurrent Loads. Readers of c.routes never take it, so a Query
	// running alongside an expensive merge only ever waits on the same
	// brief c.mu section any other reader would.
	commitMu sync.Mutex

	// onItemBuilt, if set, is called synchronously from a Load worker
	// right after one batch item's build succeeds (after its
	// cancellation recheck, before it's staged for commit). It exists
	// only so tests can deterministically order cancellation against a
	// specific item's completion; production callers never set it.
	onItemBuilt func(index int)
}

// atomicSnapshot is a minimal single-writer/many-reader pointer swap:
// exactly what spec.md's "single-writer commit via atomic snapshot
// swap" calls for, without pulling in sync/atomic.Pointer generics
// ceremony for a single field.
type atomicSnapshot struct {
	mu  sync.RWMutex
	ptr *snapshot
}

func (s *atomicSnapshot) load() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ptr
}

func (s *atomicSnapshot) store(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ptr = snap
}

// New creates an empty Collection.
func New(cfg Config) *Collection {
	cfg = cfg.normalized()
	c := &Collection{
		cfg:    cfg,
		routes: make(map[RouteID]*Route),
	}
	c.snap.store(&snapshot{
		tree:   quadtree.New(quadtree.Config{MaxPointsPerNode: cfg.MaxPointsPerNode, ReferenceViewportPixels: float64(cfg.ReferenceViewportWidth)}),
		bounds: routebounds.Build(nil),
	})
	return c
}

// Load builds and commits every track in batch as a new route. Routes
// are built concurrently across cfg.Workers goroutines; a per-item
// failure is recorded in LoadOutcome.Failed and never aborts its
// siblings. Honors ctx cancellation between routes — in-flight work
// finishes its current route (and therefore its current LOD level)
// before Load returns early.
func (c *Collection) Load(ctx context.Context, batch []RawTrack) LoadOutcome {
	type built struct {
		index int
		id    RouteID
		route *Route
		segs  []quadtree.Segment
	}

	results := make([]built, len(batch))
	failed := make([]FailedLoad, 0)
	var failedMu sync.Mutex

	c.mu.Lock()
	startID := c.nextID
	c.nextID += RouteID(len(batch))
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for i, track := range batch {
		i, track := i, track
		g.Go(func() error {
			select {
			case <-gctx.Done():
				failedMu.Lock()
				failed = append(failed, FailedLoad{Index: i, Err: gctx.Err()})
				failedMu.Unlock()
				return nil
			default:
			}

			id := startID + RouteID(i)
			route, err := newRoute(id, track)
			if err != nil {
				failedMu.Lock()
				failed = append(failed, FailedLoad{Index: i, Err: err})
				failedMu.Unlock()
				return nil
			}

			segs := buildSegments(id, route, route.ladder, c.cfg.MaxPointsPerNode)

			// Recheck after the (potentially expensive) build: a route
			// whose work was already in flight when ctx was canceled must
			// never reach c.routes or get merged in.
			select {
			case <-gctx.Done():
				failedMu.Lock()
				failed = append(failed, FailedLoad{Index: i, Err: gctx.Err()})
				failedMu.Unlock()
				return nil
			default:
			}

			results[i] = built{index: i, id: id, route: route, segs: segs}
			if c.onItemBuilt != nil {
				c.onItemBuilt(i)
			}
			return nil
		})
	}
	// errgroup.Group.Wait's error is always nil here: every worker
	// reports its own failure into failed instead of returning an error,
	// since one route's failure must never cancel its siblings.
	_ = g.Wait()

	// Build each route's per-route tree outside any lock: inserting a
	// route's segments is real work (O(points) with subdivision), and
	// none of it touches shared Collection state.
	type ready struct {
		id    RouteID
		route *Route
		tree  *quadtree.Tree
	}
	readyRoutes := make([]ready, 0, len(batch))
	for _, b := range results {
		if b.route == nil {
			continue
		}
		rt := quadtree.New(quadtree.Config{
			MaxPointsPerNode:        c.cfg.MaxPointsPerNode,
			ReferenceViewportPixels: float64(c.cfg.ReferenceViewportWidth),
		})
		for _, s := range b.segs {
			rt.Insert(s)
		}
		readyRoutes = append(readyRoutes, ready{id: b.id, route: b.route, tree: rt})
	}

	var succeeded []RouteID
	perRouteTrees := make([]*quadtree.Tree, 0, len(readyRoutes))
	addedLen := 0.0

	c.mu.Lock()
	for _, r := range readyRoutes {
		c.routes[r.id] = r.route
		succeeded = append(succeeded, r.id)
		addedLen += r.route.LengthMeters()
		perRouteTrees = append(perRouteTrees, r.tree)
	}
	c.totalLen += addedLen
	c.mu.Unlock()

	if len(perRouteTrees) > 0 {
		c.commit(perRouteTrees)
	}

	return LoadOutcome{Succeeded: succeeded, Failed: failed}
}

// LoadFromParser decodes each item of raw with parser and feeds the
// results to Load, attributing a decode failure to the same
// FailedLoad{Index, Err} shape as a build failure — wrapped in
// *ErrParse so callers can tell parsing and route construction errors
// apart via errors.As.
func (c *Collection) LoadFromParser(ctx context.Context, parser Parser, raw [][]byte) LoadOutcome {
	batch := make([]RawTrack, 0, len(raw))
	rawIndex := make([]int, 0, len(raw))
	var failed []FailedLoad

	for i, item := range raw {
		track, err := parser.Parse(item)
		if err != nil {
			failed = append(failed, FailedLoad{Index: i, Err: &ErrParse{Index: i, Cause: err}})
			continue
		}
		batch = append(batch, track)
		rawIndex = append(rawIndex, i)
	}

	outcome := c.Load(ctx, batch)
	for k := range outcome.Failed {
		outcome.Failed[k].Index = rawIndex[outcome.Failed[k].Index]
	}
	outcome.Failed = append(outcome.Failed, failed...)
	return outcome
}

// commit merges newly built per-route trees into the current snapshot
// and rebuilds the route-bounds index over every loaded route, then
// atomically publishes the result. commitMu serializes commit against
// itself — never against Query — so the expensive merge and rebuild
// below run without holding c.mu: a Query never blocks on more than the
// brief routes-map copy any other reader would.
func (c *Collection) commit(newTrees []*quadtree.Tree) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	prev := c.snap.load()
	trees := append([]*quadtree.Tree{prev.tree}, newTrees...)
	mergedTree := quadtree.ParallelMerge(trees)

	c.mu.Lock()
	allBounds := make([]routebounds.Entry, 0, len(c.routes))
	for id, r := range c.routes {
		allBounds = append(allBounds, routebounds.Entry{RouteID: int(id), BBox: r.Bbox()})
	}
	c.mu.Unlock()

	c.snap.store(&snapshot{
		tree:   mergedTree,
		bounds: routebounds.Build(allBounds),
	})
}

// Query returns every segment, across every loaded route, intersecting
// rect at the detail level bias and zoom imply. It always reads a
// single already-committed snapshot and never blocks on a concurrent
// Load.
func (c *Collection) Query(rect geo.Rect, bias float64, zoom int) QueryResult {
	start := time.Now()

	snap := c.snap.load()
	epsilonQuery := clampBias(bias) * geo.MetersPerPixel(zoom)

	c.mu.Lock()
	if len(c.routes) == 0 {
		c.lastQueryMillis = 0
		c.mu.Unlock()
		return QueryResult{}
	}
	routes := make(map[RouteID]*Route, len(c.routes))
	for id, r := range c.routes {
		routes[id] = r
	}
	c.mu.Unlock()

	minEpsilon := epsilonQuery
	first := true
	for _, r := range routes {
		target := r.TargetLevel(epsilonQuery)
		e := r.ladder.Epsilon(target)
		if first || e < minEpsilon {
			minEpsilon = e
			first = false
		}
	}

	targetLevelFunc := func(routeID int) int {
		r, ok := routes[RouteID(routeID)]
		if !ok {
			return 0
		}
		return r.TargetLevel(epsilonQuery)
	}

	raw := snap.tree.Range(rect, minEpsilon, targetLevelFunc)
	segs := make([]Segment, len(raw))
	for i, s := range raw {
		segs[i] = segmentFromQuadtree(s)
	}

	elapsed := time.Since(start)
	c.mu.Lock()
	c.lastQueryMillis = float64(elapsed) / float64(time.Millisecond)
	c.mu.Unlock()

	return QueryResult{Segments: segs, SegmentsCount: len(segs), Elapsed: elapsed}
}

// RoutesOverlapping returns the RouteIDs of every route whose bounding
// box intersects rect — an O(log n) diagnostic lookup via the
// route-bounds R-tree, distinct from (and much cheaper than) a segment
// Query.
func (c *Collection) RoutesOverlapping(rect geo.Rect) []RouteID {
	snap := c.snap.load()
	ids := snap.bounds.Overlapping(rect)
	out := make([]RouteID, len(ids))
	for i, id := range ids {
		out[i] = RouteID(id)
	}
	return out
}

// Route returns the route with the given ID, if loaded.
func (c *Collection) Route(id RouteID) (*Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.routes[id]
	return r, ok
}

// Clear drops every loaded route and resets the quadtree and
// route-bounds index to empty.
func (c *Collection) Clear() {
	c.mu.Lock()
	c.routes = make(map[RouteID]*Route)
	c.nextID = 0
	c.totalLen = 0
	c.mu.Unlock()

	c.snap.store(&snapshot{
		tree: quadtree.New(quadtree.Config{
			MaxPointsPerNode:        c.cfg.MaxPointsPerNode,
			ReferenceViewportPixels: float64(c.cfg.ReferenceViewportWidth),
		}),
		bounds: routebounds.Build(nil),
	})
}

// Stats summarizes the collection's current contents.
func (c *Collection) Stats() CollectionStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	points := 0
	for _, r := range c.routes {
		points += r.PointCount()
	}

	return CollectionStats{
		RouteCount:        len(c.routes),
		PointCount:        points,
		TotalLengthMeters: c.totalLen,
		LastQueryMillis:   c.lastQueryMillis,
	}
}
