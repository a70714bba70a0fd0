package schema

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is one finished destination: a geometry plus the standard
// output properties.
type Feature struct {
	Geometry   orb.Geometry
	Properties geojson.Properties
}

// Properties builds the standard property map for a destination.
// Missing ISO codes are kept as explicit nulls so every feature carries
// the same property set.
func (d *Destination) Properties() geojson.Properties {
	props := geojson.Properties{
		"tcc_index": d.TccIndex,
		"name":      d.Name,
		"region":    d.Region,
		"iso_a2":    nil,
		"iso_a3":    nil,
		"iso_n3":    nil,
		"sovereign": d.Sovereign,
		"type":      string(d.Type),
	}
	if d.IsoA2 != "" {
		props["iso_a2"] = d.IsoA2
	}
	if d.IsoA3 != "" {
		props["iso_a3"] = d.IsoA3
	}
	if d.IsoN3 != nil {
		props["iso_n3"] = *d.IsoN3
	}
	return props
}

// NewFeature couples a geometry with a destination's standard properties.
func NewFeature(d *Destination, geom orb.Geometry) *Feature {
	return &Feature{Geometry: geom, Properties: d.Properties()}
}

// GeoJSON converts the feature for serialization.
func (f *Feature) GeoJSON() *geojson.Feature {
	gf := geojson.NewFeature(f.Geometry)
	gf.Properties = f.Properties
	return gf
}
