package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/tccmaps/atlas/schema"
)

const (
	// Padding west of the region before the closing edge of the clip ring.
	westEdgePad = 10.0
	// The closing edge never goes further west than this. Without the
	// clamp, Russia's bounds (Chukotka sits at ~-170) would wrap the
	// ring past the antimeridian and capture the far east as "Europe".
	westEdgeClamp = -30.0
	// Width of the boundary strip used by the ray-casting fallback.
	fallbackStripWidth = 0.005
)

// Splitter partitions a country polygon into its European and Asian
// parts along the ordered boundary path. Construct it once before the
// build and share it read-only; the ordered path is computed eagerly.
type Splitter struct {
	path   orb.LineString
	merged orb.MultiLineString
}

// NewSplitter merges and orders the boundary segments. The returned
// splitter owns an immutable path; repeated Path calls return the same
// sequence.
func NewSplitter(boundary orb.MultiLineString) (*Splitter, error) {
	merged := MergeSegments(boundary)
	path := orderChains(merged)
	if len(path) < 2 {
		return nil, fmt.Errorf("boundary contains no usable segments")
	}
	return &Splitter{path: path, merged: merged}, nil
}

// Path returns the ordered south-to-north boundary coordinates.
func (s *Splitter) Path() orb.LineString {
	return s.path
}

// Split returns the requested side of the region. The result is never
// empty: when clipping removes everything, the unmodified region comes
// back instead. Degenerate-geometry failures in the primary clip are
// converted into the buffer-strip fallback; any other error is
// returned as-is.
func (s *Splitter) Split(region orb.Geometry, side schema.Side) (orb.Geometry, error) {
	europe, err := s.europePart(region)
	if err != nil {
		if !errors.Is(err, ErrDegenerate) {
			return nil, err
		}
		result, ferr := s.fallback(region, side)
		if ferr != nil {
			return nil, ferr
		}
		result = ExtractPolygons(result)
		if Empty(result) {
			return region, nil
		}
		return result, nil
	}

	if side == schema.SideEurope {
		if Empty(europe) {
			return region, nil
		}
		return europe, nil
	}

	// Asia is the region minus the European part. Building a separate
	// eastern ring would double-count the Aegean pocket where the
	// closing ring self-intersects.
	if Empty(europe) {
		return region, nil
	}
	asia, err := Difference(region, europe)
	if err != nil {
		return nil, err
	}
	asia = ExtractPolygons(asia)
	if Empty(asia) {
		return region, nil
	}
	return asia, nil
}

// europePart intersects the region with the closure ring: the ordered
// path plus a closing leg along a clamped far-west edge.
func (s *Splitter) europePart(region orb.Geometry) (orb.Geometry, error) {
	bound := region.Bound()
	westEdge := bound.Min[0] - westEdgePad
	if westEdge < westEdgeClamp {
		westEdge = westEdgeClamp
	}

	first := s.path[0]
	last := s.path[len(s.path)-1]

	ring := make(orb.Ring, 0, len(s.path)+3)
	ring = append(ring, s.path...)
	ring = append(ring,
		orb.Point{westEdge, last[1]},
		orb.Point{westEdge, first[1]},
		first,
	)

	clip, err := Repair(orb.Polygon{ring})
	if err != nil {
		return nil, err
	}
	result, err := Intersection(region, clip)
	if err != nil {
		return nil, err
	}
	return ExtractPolygons(result), nil
}

// fallback cuts the region along a thin strip buffered around the
// boundary and classifies each remaining piece by ray-casting parity:
// a horizontal ray from longitude -180 to the piece centroid crossing
// the boundary an odd number of times puts the piece in Asia.
func (s *Splitter) fallback(region orb.Geometry, side schema.Side) (orb.Geometry, error) {
	strip, err := s.boundaryStrip()
	if err != nil {
		return nil, err
	}
	remainder, err := Difference(region, strip)
	if err != nil {
		return nil, err
	}

	pieces := CollectPolygons(remainder)
	if len(pieces) == 0 {
		return nil, nil
	}

	var selected []orb.Geometry
	for _, piece := range pieces {
		c := Centroid(piece)
		asian := s.Crossings(c)%2 == 1
		if asian == (side == schema.SideAsia) {
			selected = append(selected, piece)
		}
	}
	if len(selected) == 0 {
		return nil, nil
	}
	return Dissolve(selected...)
}

// Crossings counts how many times the horizontal ray from (-180, pt.Y)
// to pt crosses the merged boundary.
func (s *Splitter) Crossings(pt orb.Point) int {
	count := 0
	for _, line := range s.merged {
		for i := 0; i+1 < len(line); i++ {
			a, b := line[i], line[i+1]
			if (a[1] > pt[1]) == (b[1] > pt[1]) {
				continue
			}
			x := a[0] + (pt[1]-a[1])*(b[0]-a[0])/(b[1]-a[1])
			if x >= -180 && x <= pt[0] {
				count++
			}
		}
	}
	return count
}

// boundaryStrip unions a thin quad around every boundary segment. The
// end caps extend half a width past each endpoint so consecutive quads
// overlap at the joints.
func (s *Splitter) boundaryStrip() (orb.Geometry, error) {
	var quads []orb.Geometry
	for _, line := range s.merged {
		for i := 0; i+1 < len(line); i++ {
			a, b := line[i], line[i+1]
			dx, dy := b[0]-a[0], b[1]-a[1]
			length := Dist(a, b)
			if length == 0 {
				continue
			}
			nx := -dy / length * fallbackStripWidth
			ny := dx / length * fallbackStripWidth
			ex := dx / length * fallbackStripWidth
			ey := dy / length * fallbackStripWidth

			quads = append(quads, orb.Polygon{orb.Ring{
				{a[0] - ex + nx, a[1] - ey + ny},
				{b[0] + ex + nx, b[1] + ey + ny},
				{b[0] + ex - nx, b[1] + ey - ny},
				{a[0] - ex - nx, a[1] - ey - ny},
				{a[0] - ex + nx, a[1] - ey + ny},
			}})
		}
	}
	if len(quads) == 0 {
		return nil, nil
	}
	return Dissolve(quads...)
}
