// Package trackindex indexes large collections of GPS routes for fast,
// resolution-matched viewport queries.
//
// A typical use:
//
//	col := trackindex.New(trackindex.DefaultConfig())
//	outcome := col.Load(ctx, []trackindex.RawTrack{
//	    {Points: points}, // decoded by the caller from GPX/FIT/whatever
//	})
//	if len(outcome.Failed) > 0 {
//	    log.Printf("%d routes failed to load", len(outcome.Failed))
//	}
//
//	viewport := geo.Rect{MinX: ..., MinY: ..., MaxX: ..., MaxY: ...}
//	result := col.Query(viewport, trackindex.DefaultBias, 14)
//	for _, seg := range result.Segments {
//	    route, _ := col.Route(seg.RouteID)
//	    for _, idx := range route.KeptIndices(seg.LOD) {
//	        if idx < seg.First || idx > seg.Last {
//	            continue
//	        }
//	        _ = route.Projected(idx) // draw this point
//	    }
//	}
//
// Routes are immutable once loaded and freely shared across concurrent
// queries. A Load that's still running is invisible to Query until its
// merge commits; queries never block waiting for one.
package trackindex
