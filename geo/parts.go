package geo

import (
	"github.com/paulmach/orb"
)

// SplitPartsByLon separates the polygon parts of a geometry by whether
// each part's centroid longitude falls inside [lo, hi]. Used to absorb
// stray slivers that a boundary ridge leaves on the wrong side of a
// continental split.
func SplitPartsByLon(g orb.Geometry, lo, hi float64) (inside, outside []orb.Polygon) {
	for _, p := range CollectPolygons(g) {
		c := Centroid(p)
		if lo <= c[0] && c[0] <= hi {
			inside = append(inside, p)
		} else {
			outside = append(outside, p)
		}
	}
	return inside, outside
}
