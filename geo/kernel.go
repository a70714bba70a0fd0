// Package geo wraps the boolean-geometry kernel and implements the
// Europe-Asia continental split used for transcontinental destinations.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrDegenerate marks a failure inside a boolean geometry operation,
// typically caused by self-intersecting input. The split engine treats
// this error class as the trigger for its ray-casting fallback.
var ErrDegenerate = errors.New("degenerate geometry")

func toGeom(g orb.Geometry) [][][][]float64 {
	polys := CollectPolygons(g)
	out := make([][][][]float64, 0, len(polys))
	for _, p := range polys {
		poly := make([][][]float64, 0, len(p))
		for _, ring := range p {
			r := make([][]float64, 0, len(ring))
			for _, pt := range ring {
				r = append(r, []float64{pt[0], pt[1]})
			}
			poly = append(poly, r)
		}
		out = append(out, poly)
	}
	return out
}

func fromGeom(g polygol.Geom) orb.Geometry {
	var mp orb.MultiPolygon
	for _, poly := range g {
		var p orb.Polygon
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			r := make(orb.Ring, 0, len(ring)+1)
			for _, pt := range ring {
				r = append(r, orb.Point{pt[0], pt[1]})
			}
			if r[0] != r[len(r)-1] {
				r = append(r, r[0])
			}
			p = append(p, r)
		}
		if len(p) > 0 {
			mp = append(mp, p)
		}
	}
	if len(mp) == 0 {
		return nil
	}
	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}

// Union merges two geometries into one.
func Union(a, b orb.Geometry) (orb.Geometry, error) {
	out, err := polygol.Union(toGeom(a), toGeom(b))
	if err != nil {
		return nil, fmt.Errorf("%w: union: %v", ErrDegenerate, err)
	}
	return fromGeom(out), nil
}

// Difference subtracts b from a.
func Difference(a, b orb.Geometry) (orb.Geometry, error) {
	out, err := polygol.Difference(toGeom(a), toGeom(b))
	if err != nil {
		return nil, fmt.Errorf("%w: difference: %v", ErrDegenerate, err)
	}
	return fromGeom(out), nil
}

// Intersection clips a to b.
func Intersection(a, b orb.Geometry) (orb.Geometry, error) {
	out, err := polygol.Intersection(toGeom(a), toGeom(b))
	if err != nil {
		return nil, fmt.Errorf("%w: intersection: %v", ErrDegenerate, err)
	}
	return fromGeom(out), nil
}

// Repair normalizes a possibly self-intersecting polygon through a
// self-union, the clipper equivalent of a zero-width buffer.
func Repair(g orb.Geometry) (orb.Geometry, error) {
	out, err := polygol.Union(toGeom(g))
	if err != nil {
		return nil, fmt.Errorf("%w: repair: %v", ErrDegenerate, err)
	}
	return fromGeom(out), nil
}

// Dissolve unions any number of geometries into one.
func Dissolve(gs ...orb.Geometry) (orb.Geometry, error) {
	if len(gs) == 0 {
		return nil, nil
	}
	rest := make([]polygol.Geom, 0, len(gs)-1)
	for _, g := range gs[1:] {
		rest = append(rest, toGeom(g))
	}
	out, err := polygol.Union(toGeom(gs[0]), rest...)
	if err != nil {
		return nil, fmt.Errorf("%w: dissolve: %v", ErrDegenerate, err)
	}
	return fromGeom(out), nil
}

// CollectPolygons flattens any geometry into its polygon parts,
// discarding points and lines.
func CollectPolygons(g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return nil
		}
		return []orb.Polygon{v}
	case orb.MultiPolygon:
		var out []orb.Polygon
		for _, p := range v {
			out = append(out, CollectPolygons(p)...)
		}
		return out
	case orb.Collection:
		var out []orb.Polygon
		for _, sub := range v {
			out = append(out, CollectPolygons(sub)...)
		}
		return out
	}
	return nil
}

// ExtractPolygons keeps only the area parts of a geometry: nil when
// none remain, a single Polygon, or a MultiPolygon.
func ExtractPolygons(g orb.Geometry) orb.Geometry {
	polys := CollectPolygons(g)
	if len(polys) == 0 {
		return nil
	}
	if len(polys) == 1 {
		return polys[0]
	}
	return orb.MultiPolygon(polys)
}

// Empty reports whether a geometry has no area parts at all.
func Empty(g orb.Geometry) bool {
	if g == nil {
		return true
	}
	switch g.(type) {
	case orb.Point, orb.MultiPoint, orb.LineString, orb.MultiLineString:
		return false
	}
	return len(CollectPolygons(g)) == 0
}

// Area returns the planar area of a geometry in square degrees.
func Area(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return math.Abs(planar.Area(g))
}

// Centroid returns the area-weighted centroid of a geometry.
func Centroid(g orb.Geometry) orb.Point {
	c, _ := planar.CentroidArea(g)
	return c
}

// Dist is the Euclidean distance between two (lon, lat) points.
func Dist(a, b orb.Point) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}
