// Package output writes the merged feature collection and validates
// the artifacts of a build.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"

	"github.com/tccmaps/atlas/schema"
)

const logPrefix = "output"

// MergedFile is the merged full-detail GeoJSON artifact name.
const MergedFile = "merged.geojson"

// Write serializes features into a GeoJSON FeatureCollection at path,
// creating parent directories as needed. Callers pass features already
// ordered by catalog index.
func Write(features []*schema.Feature, path string) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f.GeoJSON())
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to marshal feature collection: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.WithField("prefix", logPrefix).Infof(
		"wrote %d features to %s (%.1f MB)",
		len(features), path, float64(len(data))/(1024*1024))
	return nil
}
