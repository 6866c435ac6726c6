// Command trackviz renders quick HTML charts of how a loaded collection's
// routes simplify across LOD levels and how many segments a world-wide
// query returns at several zoom levels.
// It is a debugging aid, not part of the package's public contract — in the
// same spirit as the teacher's docs/examples/* and cmd/tools/* programs.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/trackline/geoindex/internal/geo"
	"github.com/trackline/geoindex/pkg/trackindex"
)

// syntheticTrack builds a wandering GPS-like track anchored at (lat0, lon0)
// so the demo has something to chart without needing a real GPX file.
func syntheticTrack(seed int64, n int, lat0, lon0 float64) trackindex.RawTrack {
	rnd := rand.New(rand.NewSource(seed))
	pts := make([]geo.LatLon, n)
	lat, lon := lat0, lon0
	for i := 0; i < n; i++ {
		lat += 0.0004 + rnd.Float64()*0.0003
		lon += 0.0002 + (rnd.Float64()-0.5)*0.0006
		pts[i] = geo.LatLon{Lat: lat, Lon: lon}
	}
	return trackindex.RawTrack{Points: pts}
}

func main() {
	col := trackindex.New(trackindex.DefaultConfig())

	batch := []trackindex.RawTrack{
		syntheticTrack(1, 4000, 37.7749, -122.4194), // San Francisco
		syntheticTrack(2, 2500, 40.7128, -74.0060),  // New York
		syntheticTrack(3, 1200, 51.5074, -0.1278),   // London
	}

	outcome := col.Load(context.Background(), batch)
	if len(outcome.Failed) > 0 {
		log.Printf("%d routes failed to load", len(outcome.Failed))
	}

	retentionChart := renderRetentionChart(col, outcome.Succeeded)
	depthChart := renderDepthChart(col, outcome.Succeeded)

	if err := writeChart(retentionChart, "trackviz_retention.html"); err != nil {
		log.Fatalf("render retention chart: %v", err)
	}
	if err := writeChart(depthChart, "trackviz_depth.html"); err != nil {
		log.Fatalf("render depth chart: %v", err)
	}

	fmt.Println("wrote trackviz_retention.html and trackviz_depth.html")
}

// renderRetentionChart plots kept-point count per LOD level for each loaded
// route, one line series per route, so the LOD ladder's falloff is visible
// at a glance.
func renderRetentionChart(col *trackindex.Collection, ids []trackindex.RouteID) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track LOD Retention", Theme: "dark", Width: "960px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{Title: "Kept Points per LOD Level", Subtitle: fmt.Sprintf("%d routes", len(ids))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kept points", NameLocation: "middle", NameGap: 40}),
	)

	maxDepth := 0
	for _, id := range ids {
		route, ok := col.Route(id)
		if !ok {
			continue
		}
		if d := route.LODDepth(); d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([]string, maxDepth)
	for l := range levels {
		levels[l] = fmt.Sprintf("L%d", l)
	}
	line.SetXAxis(levels)

	for _, id := range ids {
		route, ok := col.Route(id)
		if !ok {
			continue
		}
		data := make([]opts.LineData, maxDepth)
		for l := 0; l < maxDepth; l++ {
			count := route.PointCount()
			if l < route.LODDepth() {
				count = len(route.KeptIndices(l))
			}
			data[l] = opts.LineData{Value: count}
		}
		line.AddSeries(fmt.Sprintf("route %d", id), data)
	}

	return line
}

// renderDepthChart plots how many segments Query returns across a spread of
// zoom levels for the world-spanning viewport, a rough proxy for how deep a
// query has to walk the shared quadtree at each resolution.
func renderDepthChart(col *trackindex.Collection, ids []trackindex.RouteID) *charts.Bar {
	world := geo.Rect{
		MinX: -geo.EarthHalfExtent, MinY: -geo.EarthHalfExtent,
		MaxX: geo.EarthHalfExtent, MaxY: geo.EarthHalfExtent,
	}

	zooms := []int{2, 6, 10, 14, 18}
	x := make([]string, len(zooms))
	y := make([]opts.BarData, len(zooms))
	for i, z := range zooms {
		result := col.Query(world, trackindex.DefaultBias, z)
		x[i] = fmt.Sprintf("z%d", z)
		y[i] = opts.BarData{Value: result.SegmentsCount}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Segments per Zoom", Theme: "dark", Width: "960px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{Title: "Returned Segments by Zoom Level", Subtitle: fmt.Sprintf("%d routes", len(ids))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("segments", y, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	return bar
}

func writeChart(c interface{ Render(io.Writer) error }, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Render(f)
}
