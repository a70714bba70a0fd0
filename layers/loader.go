package layers

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"
)

const loaderLogPrefix = "layers"

// Source dataset file names, as produced by the downloader.
const (
	SubunitsFile = "ne_10m_admin_0_map_subunits.geojson"
	UnitsFile    = "ne_10m_admin_0_map_units.geojson"
	Admin1File   = "ne_10m_admin_1_states_provinces.geojson"
	DisputedFile = "ne_10m_admin_0_disputed_areas.geojson"
	BoundaryFile = "europe_asia_boundary.geojson"
)

// LoadLayer reads one GeoJSON FeatureCollection as a layer. Property
// values are flattened to strings; non-scalar properties are dropped.
func LoadLayer(path, name string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layer %s: %w", name, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer %s: %w", name, err)
	}

	rows := make([]Row, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		attrs := make(map[string]string, len(f.Properties))
		for k, v := range f.Properties {
			switch val := v.(type) {
			case string:
				attrs[k] = val
			case float64:
				attrs[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case int:
				attrs[k] = strconv.Itoa(val)
			}
		}
		rows = append(rows, Row{Geometry: f.Geometry, Attrs: attrs})
	}
	return &Layer{Name: name, Rows: rows}, nil
}

// LoadSet loads the four source layers from dir.
func LoadSet(dir string) (*Set, error) {
	subunits, err := LoadLayer(filepath.Join(dir, SubunitsFile), "subunits")
	if err != nil {
		return nil, err
	}
	units, err := LoadLayer(filepath.Join(dir, UnitsFile), "units")
	if err != nil {
		return nil, err
	}
	admin1, err := LoadLayer(filepath.Join(dir, Admin1File), "admin1")
	if err != nil {
		return nil, err
	}
	disputed, err := LoadLayer(filepath.Join(dir, DisputedFile), "disputed")
	if err != nil {
		return nil, err
	}

	log.WithField("prefix", loaderLogPrefix).WithFields(log.Fields{
		"subunits": len(subunits.Rows),
		"units":    len(units.Rows),
		"admin1":   len(admin1.Rows),
		"disputed": len(disputed.Rows),
	}).Info("source layers loaded")

	return &Set{
		Subunits: subunits,
		Units:    units,
		Admin1:   admin1,
		Disputed: disputed,
	}, nil
}

// LoadBoundary reads the Europe-Asia boundary as a flat set of line
// segments.
func LoadBoundary(dir string) (orb.MultiLineString, error) {
	data, err := os.ReadFile(filepath.Join(dir, BoundaryFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read boundary: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse boundary: %w", err)
	}

	var lines orb.MultiLineString
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, g)
		case orb.MultiLineString:
			lines = append(lines, g...)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("boundary file contains no line segments")
	}
	return lines, nil
}
