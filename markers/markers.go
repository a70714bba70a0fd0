// Package markers converts destinations too small for web-scale
// polygons into centroid point markers, simplifies the rest to
// TopoJSON, and stitches the points back into the topology.
package markers

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"

	"github.com/tccmaps/atlas/geo"
)

const logPrefix = "markers"

// AreaThresholdKm2 is the cutoff below which a polygon becomes a
// centroid marker.
const AreaThresholdKm2 = 1000.0

// Classify splits a merged collection into polygons worth keeping and
// point markers. Point features from the build stay points; polygons
// under the area threshold are replaced by their centroid. Every
// feature gains a marker flag, and area-bearing features an area_km2
// property.
func Classify(fc *geojson.FeatureCollection) (polygons *geojson.FeatureCollection, points []*geojson.Feature) {
	polygons = geojson.NewFeatureCollection()

	var nMarkers, nPolygons int
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}

		if pt, ok := f.Geometry.(orb.Point); ok {
			marked := cloneFeature(f, pt)
			marked.Properties["marker"] = true
			points = append(points, marked)
			nMarkers++
			continue
		}

		areaKm2 := orbgeo.Area(f.Geometry) / 1e6

		if areaKm2 < AreaThresholdKm2 {
			marked := cloneFeature(f, geo.Centroid(f.Geometry))
			marked.Properties["marker"] = true
			marked.Properties["area_km2"] = roundTenth(areaKm2)
			points = append(points, marked)
			nMarkers++
			continue
		}

		kept := cloneFeature(f, f.Geometry)
		kept.Properties["marker"] = false
		kept.Properties["area_km2"] = roundTenth(areaKm2)
		polygons.Append(kept)
		nPolygons++
	}

	log.WithField("prefix", logPrefix).WithFields(log.Fields{
		"polygons": nPolygons,
		"markers":  nMarkers,
	}).Info("classified features")

	return polygons, points
}

func cloneFeature(f *geojson.Feature, g orb.Geometry) *geojson.Feature {
	out := geojson.NewFeature(g)
	out.Properties = make(geojson.Properties, len(f.Properties)+2)
	for k, v := range f.Properties {
		out.Properties[k] = v
	}
	return out
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
