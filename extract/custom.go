package extract

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"

	"github.com/tccmaps/atlas/geo"
	"github.com/tccmaps/atlas/layers"
	"github.com/tccmaps/atlas/schema"
)

// Built holds finished features keyed by catalog index. Clip and group
// remainder extractions subtract already-built destinations from it.
type Built map[int]*schema.Feature

// Clip splits a country along the continental boundary and keeps one
// side, then absorbs stray slivers, subtracts already-built
// destinations, and subtracts subunits by code.
func (e *Extractor) Clip(d *schema.Destination, built Built) (orb.Geometry, error) {
	x := d.Extraction

	country, ok := e.set.CountryGeom(x.Adm0A3)
	if !ok {
		log.WithField("prefix", logPrefix).Warnf("could not find %s for clip", x.Adm0A3)
		return nil, fmt.Errorf("no country geometry for %q", x.Adm0A3)
	}

	result, err := e.splitter.Split(country, x.Side)
	if err != nil {
		return nil, err
	}
	if geo.Empty(result) {
		log.WithField("prefix", logPrefix).Warnf("clip result empty for %s", d.Name)
		return nil, fmt.Errorf("clip result empty for %q", d.Name)
	}

	// Absorb polygon parts stranded on the wrong side within the given
	// longitude range. Fixes Caucasus ridge slivers.
	if x.AbsorbLonRange != nil {
		lo, hi := x.AbsorbLonRange[0], x.AbsorbLonRange[1]
		switch x.Side {
		case schema.SideEurope:
			asia, err := geo.Difference(country, result)
			if err != nil {
				return nil, err
			}
			strays, _ := geo.SplitPartsByLon(asia, lo, hi)
			if len(strays) > 0 {
				parts := []orb.Geometry{result}
				for _, p := range strays {
					parts = append(parts, p)
				}
				result, err = geo.Dissolve(parts...)
				if err != nil {
					return nil, err
				}
			}
		case schema.SideAsia:
			_, keep := geo.SplitPartsByLon(result, lo, hi)
			if len(keep) > 0 {
				parts := make([]orb.Geometry, 0, len(keep))
				for _, p := range keep {
					parts = append(parts, p)
				}
				result, err = geo.Dissolve(parts...)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	if len(x.SubtractIndices) > 0 && built != nil {
		var parts []orb.Geometry
		for _, idx := range x.SubtractIndices {
			if f, ok := built[idx]; ok {
				parts = append(parts, f.Geometry)
			}
		}
		if len(parts) > 0 {
			sub, err := geo.Dissolve(parts...)
			if err != nil {
				return nil, err
			}
			result, err = e.subtractRepaired(result, sub)
			if err != nil {
				return nil, err
			}
			if geo.Empty(result) {
				log.WithField("prefix", logPrefix).Warnf("clip-subtract result empty for %s", d.Name)
				return nil, fmt.Errorf("clip-subtract result empty for %q", d.Name)
			}
		}
	}

	if len(x.SubtractSuA3) > 0 {
		var parts []orb.Geometry
		for _, code := range x.SubtractSuA3 {
			rows := e.set.Subunits.FilterEq("SU_A3", code)
			if len(rows) == 0 {
				continue
			}
			g, err := layers.Dissolve(rows)
			if err != nil {
				return nil, err
			}
			parts = append(parts, g)
		}
		if len(parts) > 0 {
			sub, err := geo.Dissolve(parts...)
			if err != nil {
				return nil, err
			}
			result, err = e.subtractRepaired(result, sub)
			if err != nil {
				return nil, err
			}
			if geo.Empty(result) {
				log.WithField("prefix", logPrefix).Warnf("clip-subtract-su result empty for %s", d.Name)
				return nil, fmt.Errorf("clip-subtract-su result empty for %q", d.Name)
			}
		}
	}

	return result, nil
}

// Disputed extracts a feature from the disputed layer by name, merging
// extra named features when configured.
func (e *Extractor) Disputed(d *schema.Destination) (orb.Geometry, error) {
	x := d.Extraction
	name := x.NEName
	if name == "" {
		name = d.Name
	}

	geom, ok := e.findDisputedGeom(name, layers.DisputedNameFields)
	if !ok {
		log.WithField("prefix", logPrefix).Warnf("disputed feature not found: %s", name)
		return nil, fmt.Errorf("disputed feature not found: %q", name)
	}

	for _, extra := range x.AlsoMerge {
		g, ok := e.findDisputedGeom(extra, layers.DisputedNameFields)
		if !ok {
			continue
		}
		var err error
		geom, err = geo.Union(geom, g)
		if err != nil {
			return nil, err
		}
	}

	return geom, nil
}

// IslandBbox extracts the polygon parts of a parent feature whose
// centroids fall inside a bounding box. When no centroid lands inside,
// parts that merely intersect the box are taken instead.
func (e *Extractor) IslandBbox(d *schema.Destination) (orb.Geometry, error) {
	x := d.Extraction

	var parent orb.Geometry
	switch {
	case x.ParentAdmin1 != "":
		g, ok := e.admin1Geom(x.ParentAdm0A3, x.ParentAdmin1)
		if !ok {
			log.WithField("prefix", logPrefix).Warnf("parent feature not found for %s", d.Name)
			return nil, fmt.Errorf("parent admin1 %q not found", x.ParentAdmin1)
		}
		parent = g
	case x.ParentAdm0A3 != "":
		g, ok := e.set.CountryGeom(x.ParentAdm0A3)
		if !ok {
			log.WithField("prefix", logPrefix).Warnf("parent feature not found for %s", d.Name)
			return nil, fmt.Errorf("parent country %q not found", x.ParentAdm0A3)
		}
		parent = g
	default:
		return nil, fmt.Errorf("island_bbox for %q has no parent", d.Name)
	}

	result, err := extractPolygonsByBbox(parent, *x.Bbox)
	if err != nil {
		return nil, err
	}
	if result == nil {
		log.WithField("prefix", logPrefix).Warnf("no polygons in bbox for %s", d.Name)
		return nil, fmt.Errorf("no polygons in bbox for %q", d.Name)
	}
	return result, nil
}

// GroupRemainder extracts a country minus already-built destinations.
// It runs in the second pass, after every subtracted index exists.
func (e *Extractor) GroupRemainder(d *schema.Destination, built Built) (orb.Geometry, error) {
	x := d.Extraction

	country, ok := e.set.CountryGeom(x.Adm0A3)
	if !ok {
		return nil, fmt.Errorf("no country geometry for %q", x.Adm0A3)
	}

	if len(x.SubtractIndices) == 0 {
		return country, nil
	}

	var parts []orb.Geometry
	for _, idx := range x.SubtractIndices {
		if f, ok := built[idx]; ok {
			parts = append(parts, f.Geometry)
		}
	}
	if len(parts) == 0 {
		return country, nil
	}

	sub, err := geo.Dissolve(parts...)
	if err != nil {
		return nil, err
	}
	result, err := e.subtractRepaired(country, sub)
	if err != nil {
		return nil, err
	}
	if geo.Empty(result) {
		log.WithField("prefix", logPrefix).Warnf("group remainder empty for %s", d.Name)
		return nil, fmt.Errorf("group remainder empty for %q", d.Name)
	}
	return result, nil
}

// Antarctic generates a polar sector between longitudes and clips it
// to the real coastline. Sectors that cross the antimeridian are built
// as two wedges; an empty coastline clip keeps the raw wedge.
func (e *Extractor) Antarctic(d *schema.Destination) (orb.Geometry, error) {
	x := d.Extraction

	latNorth := -60.0
	if x.LatNorth != nil {
		latNorth = *x.LatNorth
	}
	const latSouth = -90.0

	var wedge orb.Geometry
	if len(x.Sectors) > 0 {
		parts := make([]orb.Geometry, 0, len(x.Sectors))
		for _, s := range x.Sectors {
			parts = append(parts, makeWedge(s.LonWest, s.LonEast, latNorth, latSouth))
		}
		g, err := geo.Dissolve(parts...)
		if err != nil {
			return nil, err
		}
		wedge = g
	} else {
		lonWest, lonEast := *x.LonWest, *x.LonEast
		if lonWest > lonEast {
			// Crosses the antimeridian, e.g. Ross Dependency.
			g, err := geo.Union(
				makeWedge(lonWest, 180, latNorth, latSouth),
				makeWedge(-180, lonEast, latNorth, latSouth),
			)
			if err != nil {
				return nil, err
			}
			wedge = g
		} else {
			wedge = makeWedge(lonWest, lonEast, latNorth, latSouth)
		}
	}

	if e.antarctica == nil {
		return wedge, nil
	}

	result, err := geo.Intersection(e.antarctica, wedge)
	if err != nil {
		return nil, err
	}
	if geo.Empty(result) {
		log.WithField("prefix", logPrefix).Warnf("antarctic clip empty for %s, using wedge", d.Name)
		return wedge, nil
	}
	return result, nil
}

// Point generates a point feature for destinations too small for a
// polygon at web scale.
func (e *Extractor) Point(d *schema.Destination) (orb.Geometry, error) {
	x := d.Extraction
	return orb.Point{*x.Lon, *x.Lat}, nil
}

// admin1Geom finds one province by name, optionally narrowed to a
// country code first.
func (e *Extractor) admin1Geom(adm0, name string) (orb.Geometry, bool) {
	rows := e.set.Admin1.Rows
	if adm0 != "" {
		rows = e.set.Admin1.FilterEq("adm0_a3", adm0)
	}
	for _, field := range layers.Admin1NameFields {
		matches := filterRowsEqFold(rows, field, name)
		if len(matches) == 0 {
			continue
		}
		g, err := layers.Dissolve(matches)
		if err != nil || geo.Empty(g) {
			continue
		}
		return g, true
	}
	return nil, false
}

const wedgeArcPoints = 60

// makeWedge builds a sector polygon from the pole up to latNorth, with
// a densified northern arc so reprojection keeps it round.
func makeWedge(lonWest, lonEast, latNorth, latSouth float64) orb.Polygon {
	ring := make(orb.Ring, 0, wedgeArcPoints+4)
	for i := 0; i <= wedgeArcPoints; i++ {
		lon := lonWest + (lonEast-lonWest)*float64(i)/wedgeArcPoints
		ring = append(ring, orb.Point{lon, latNorth})
	}
	ring = append(ring, orb.Point{lonEast, latSouth})
	ring = append(ring, orb.Point{lonWest, latSouth})
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// extractPolygonsByBbox keeps the polygon parts whose centroid lies in
// the box, falling back to an intersection test when none do.
func extractPolygonsByBbox(g orb.Geometry, bbox schema.Bbox) (orb.Geometry, error) {
	polys := geo.CollectPolygons(g)
	if len(polys) == 0 {
		return nil, nil
	}

	inBox := func(p orb.Point) bool {
		return bbox.West() <= p[0] && p[0] <= bbox.East() &&
			bbox.South() <= p[1] && p[1] <= bbox.North()
	}

	var matches []orb.Polygon
	for _, p := range polys {
		if inBox(geo.Centroid(p)) {
			matches = append(matches, p)
		}
	}

	if len(matches) == 0 {
		boxPoly := orb.Polygon{{
			{bbox.West(), bbox.South()},
			{bbox.East(), bbox.South()},
			{bbox.East(), bbox.North()},
			{bbox.West(), bbox.North()},
			{bbox.West(), bbox.South()},
		}}
		for _, p := range polys {
			overlap, err := geo.Intersection(p, boxPoly)
			if err != nil {
				return nil, err
			}
			if !geo.Empty(overlap) {
				matches = append(matches, p)
			}
		}
	}

	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return orb.MultiPolygon(matches), nil
}

func filterRowsEqFold(rows []layers.Row, field, value string) []layers.Row {
	var out []layers.Row
	for _, r := range rows {
		if v := r.Attr(field); v != "" && strings.EqualFold(v, value) {
			out = append(out, r)
		}
	}
	return out
}
