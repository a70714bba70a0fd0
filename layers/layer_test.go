package layers

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tccmaps/atlas/geo"
)

func box(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}}
}

func testLayer() *Layer {
	return &Layer{
		Name: "test",
		Rows: []Row{
			{
				Geometry: box(10, 10, 20, 20),
				Attrs:    map[string]string{"SU_A3": "TST", "ADM0_A3": "TST", "NAME": "Testland"},
			},
			{
				Geometry: box(30, 10, 40, 20),
				Attrs:    map[string]string{"SU_A3": "OTH", "ADM0_A3": "OTH", "NAME": "Otherland"},
			},
		},
	}
}

func TestFilterEq(t *testing.T) {
	rows := testLayer().FilterEq("SU_A3", "TST")
	require.Len(t, rows, 1)
	assert.Equal(t, "Testland", rows[0].Attr("NAME"))
}

func TestFilterEqMissingField(t *testing.T) {
	assert.Empty(t, testLayer().FilterEq("NOPE", "TST"))
}

func TestFilterEqFold(t *testing.T) {
	rows := testLayer().FilterEqFold("NAME", "testland")
	assert.Len(t, rows, 1)
}

func TestFilterContainsFold(t *testing.T) {
	rows := testLayer().FilterContainsFold("NAME", "other")
	require.Len(t, rows, 1)
	assert.Equal(t, "OTH", rows[0].Attr("SU_A3"))
}

func TestFindByCodeFirstFieldWins(t *testing.T) {
	l := &Layer{Rows: []Row{
		{Geometry: box(0, 0, 1, 1), Attrs: map[string]string{"SU_A3": "AAA", "ADM0_A3": "BBB"}},
		{Geometry: box(5, 5, 6, 6), Attrs: map[string]string{"SU_A3": "CCC", "ADM0_A3": "AAA"}},
	}}

	g, ok := l.FindByCode("AAA", DirectCodeFields)
	require.True(t, ok)
	c := geo.Centroid(g)
	assert.InDelta(t, 0.5, c[0], 1e-9)
}

func TestFindByCodeFallsThroughFields(t *testing.T) {
	l := &Layer{Rows: []Row{
		{Geometry: box(0, 0, 1, 1), Attrs: map[string]string{"ISO_A3": "AAA"}},
	}}
	_, ok := l.FindByCode("AAA", DirectCodeFields)
	assert.True(t, ok)
}

func TestFindByCodeNotFound(t *testing.T) {
	_, ok := testLayer().FindByCode("ZZZ", DirectCodeFields)
	assert.False(t, ok)
}

func TestDissolveMergesRows(t *testing.T) {
	rows := []Row{
		{Geometry: box(0, 0, 1, 1)},
		{Geometry: box(1, 0, 2, 1)},
	}
	g, err := Dissolve(rows)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, geo.Area(g), 1e-9)
}

func TestCountryGeomPrefersSubunits(t *testing.T) {
	s := &Set{
		Subunits: &Layer{Rows: []Row{
			{Geometry: box(0, 0, 1, 1), Attrs: map[string]string{"ADM0_A3": "TST"}},
		}},
		Units: &Layer{Rows: []Row{
			{Geometry: box(10, 10, 11, 11), Attrs: map[string]string{"ADM0_A3": "TST"}},
		}},
	}
	g, ok := s.CountryGeom("TST")
	require.True(t, ok)
	assert.InDelta(t, 0.5, geo.Centroid(g)[0], 1e-9)
}

func TestCountryGeomFallsBackToUnits(t *testing.T) {
	s := &Set{
		Subunits: &Layer{},
		Units: &Layer{Rows: []Row{
			{Geometry: box(10, 10, 11, 11), Attrs: map[string]string{"ADM0_A3": "TST"}},
		}},
	}
	_, ok := s.CountryGeom("TST")
	assert.True(t, ok)
}
