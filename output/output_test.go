package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tccmaps/atlas/schema"
)

func testFeature(idx int, name string) *schema.Feature {
	return &schema.Feature{
		Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		Properties: geojson.Properties{
			"tcc_index": idx,
			"name":      name,
			"region":    "Test Region",
			"iso_a2":    nil,
			"iso_a3":    nil,
			"iso_n3":    nil,
			"sovereign": "Testland",
			"type":      "country",
		},
	}
}

func TestWriteProducesFeatureCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "merged.geojson")
	features := []*schema.Feature{testFeature(1, "Testland"), testFeature(2, "Otherland")}

	require.NoError(t, Write(features, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Testland", fc.Features[0].Properties["name"])
}

func TestValidateMergedReportsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.geojson")
	require.NoError(t, Write([]*schema.Feature{testFeature(1, "Testland")}, path))

	report, err := ValidateMerged(path)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, 1, report.Features)
	assert.NotContains(t, report.Missing, 1)
	assert.Contains(t, report.Missing, 2)
}

func TestValidateMergedReportsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.geojson")
	require.NoError(t, Write([]*schema.Feature{
		testFeature(1, "Testland"), testFeature(1, "Testland"),
	}, path))

	report, err := ValidateMerged(path)
	require.NoError(t, err)
	assert.Contains(t, report.Errors, "duplicate tcc_index: 1")
}

func TestValidateMergedReportsNullProps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.geojson")
	f := testFeature(1, "Testland")
	f.Properties["sovereign"] = nil
	require.NoError(t, Write([]*schema.Feature{f}, path))

	report, err := ValidateMerged(path)
	require.NoError(t, err)
	assert.Contains(t, report.Errors, `[1] Testland: missing "sovereign"`)
}

func TestValidateMergedMissingFile(t *testing.T) {
	_, err := ValidateMerged(filepath.Join(t.TempDir(), "nope.geojson"))
	assert.Error(t, err)
}

func TestValidateTopologyCountsGeometries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topo.json")
	doc := `{"type":"Topology","objects":{"a":{"geometries":[{},{}]},"b":{"geometries":[{}]}},"arcs":[]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	report, err := ValidateTopology(path)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Features)
	assert.False(t, report.OK())
}
