package extract

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tccmaps/atlas/geo"
	"github.com/tccmaps/atlas/layers"
	"github.com/tccmaps/atlas/schema"
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

// testSet builds the synthetic source layers every strategy test
// reads: Testland, its two provinces, and one disputed zone.
func testSet() *layers.Set {
	testland := map[string]string{
		"SU_A3": "TST", "ADM0_A3": "TST", "GU_A3": "TST", "ISO_A3": "TST",
		"NAME": "Testland", "NAME_EN": "Testland",
	}
	return &layers.Set{
		Subunits: &layers.Layer{Name: "subunits", Rows: []layers.Row{
			{Geometry: box(10, 10, 20, 20), Attrs: testland},
		}},
		Units: &layers.Layer{Name: "units", Rows: []layers.Row{
			{Geometry: box(10, 10, 20, 20), Attrs: testland},
		}},
		Admin1: &layers.Layer{Name: "admin1", Rows: []layers.Row{
			{
				Geometry: box(10, 15, 20, 20),
				Attrs: map[string]string{
					"adm0_a3": "TST", "iso_a2": "TS",
					"name": "North Province", "name_en": "North Province",
					"NAME": "North Province", "NAME_EN": "North Province",
				},
			},
			{
				Geometry: box(10, 10, 20, 15),
				Attrs: map[string]string{
					"adm0_a3": "TST", "iso_a2": "TS",
					"name": "South Province", "name_en": "South Province",
					"NAME": "South Province", "NAME_EN": "South Province",
				},
			},
		}},
		Disputed: &layers.Layer{Name: "disputed", Rows: []layers.Row{
			{
				Geometry: box(12, 12, 14, 14),
				Attrs: map[string]string{
					"NAME": "Disputed Zone", "BRK_NAME": "Disputed Zone",
					"NAME_LONG": "Disputed Zone", "ADMIN": "Disputed Zone",
				},
			},
		}},
	}
}

func testExtractor(t *testing.T) *Extractor {
	t.Helper()
	splitter, err := geo.NewSplitter(orb.MultiLineString{{{15, -90}, {15, 90}}})
	require.NoError(t, err)
	return NewExtractor(testSet(), splitter)
}

func baseDest() *schema.Destination {
	n3 := 999
	return &schema.Destination{
		TccIndex:  1,
		Name:      "Testland",
		Region:    "Test Region",
		IsoA2:     "TS",
		IsoA3:     "TST",
		IsoN3:     &n3,
		Sovereign: "Testland",
		Type:      schema.TypeCountry,
	}
}

func TestDirectByCode(t *testing.T) {
	e := testExtractor(t)
	g, err := e.Direct(baseDest())
	require.NoError(t, err)
	assert.InDelta(t, 100.0, geo.Area(g), 1e-9)
}

func TestDirectByNameFallback(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.IsoA3 = ""
	g, err := e.Direct(d)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, geo.Area(g), 1e-9)
}

func TestDirectUnknownCodeFails(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Name = "Nowhere"
	d.IsoA3 = "XXX"
	_, err := e.Direct(d)
	assert.Error(t, err)
}

func TestDirectCodeOverride(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.IsoA3 = "XXX"
	d.Extraction = &schema.Extraction{Strategy: schema.StrategyDirect, Adm0A3: "TST"}
	g, err := e.Direct(d)
	require.NoError(t, err)
	assert.False(t, geo.Empty(g))
}

func TestSubunitByCode(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{Strategy: schema.StrategySubunit, SuA3: "TST"}
	g, err := e.Subunit(d)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, geo.Area(g), 1e-9)
}

func TestSubunitNameNarrowing(t *testing.T) {
	set := testSet()
	set.Subunits.Rows = []layers.Row{
		{Geometry: box(0, 0, 1, 1), Attrs: map[string]string{"SU_A3": "TWO", "NAME": "West Part"}},
		{Geometry: box(5, 0, 6, 1), Attrs: map[string]string{"SU_A3": "TWO", "NAME": "East Part"}},
	}
	splitter, err := geo.NewSplitter(orb.MultiLineString{{{15, -90}, {15, 90}}})
	require.NoError(t, err)
	e := NewExtractor(set, splitter)

	d := baseDest()
	d.Extraction = &schema.Extraction{Strategy: schema.StrategySubunit, SuA3: "TWO", SubunitName: "East Part"}
	g, err := e.Subunit(d)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, geo.Centroid(g)[0], 1e-9)
}

func TestSubunitNameFallback(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{Strategy: schema.StrategySubunit, SuA3: "NOPE"}
	g, err := e.Subunit(d)
	require.NoError(t, err)
	assert.False(t, geo.Empty(g))
}

func TestAdmin1ExactMatch(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyAdmin1, Adm0A3: "TST", Admin1: []string{"North Province"},
	}
	g, err := e.Admin1(d)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, geo.Area(g), 1e-9)
	assert.InDelta(t, 17.5, geo.Centroid(g)[1], 1e-9)
}

func TestAdmin1ContainsFallback(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyAdmin1, Adm0A3: "TST", Admin1: []string{"North"},
	}
	g, err := e.Admin1(d)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, geo.Area(g), 1e-9)
}

func TestAdmin1BothProvinces(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyAdmin1, Adm0A3: "TST",
		Admin1: []string{"North Province", "South Province"},
	}
	g, err := e.Admin1(d)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, geo.Area(g), 1e-9)
}

func TestAdmin1NoMatchFails(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyAdmin1, Adm0A3: "TST", Admin1: []string{"Atlantis"},
	}
	_, err := e.Admin1(d)
	assert.Error(t, err)
}

func TestRemainderSubtractsProvince(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyRemainder, Adm0A3: "TST",
		SubtractAdmin1: []string{"North Province"},
	}
	g, err := e.Remainder(d)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, geo.Area(g), 1e-9)
	assert.InDelta(t, 12.5, geo.Centroid(g)[1], 1e-9)
}

func TestRemainderSubtractsDisputed(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyRemainder, Adm0A3: "TST",
		SubtractDisputed: []string{"Disputed Zone"},
	}
	g, err := e.Remainder(d)
	require.NoError(t, err)
	assert.InDelta(t, 96.0, geo.Area(g), 1e-9)
}

func TestRemainderMergesDisputed(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyRemainder, Adm0A3: "TST",
		SubtractAdmin1: []string{"South Province"},
		MergeDisputed:  []string{"Disputed Zone"},
	}
	g, err := e.Remainder(d)
	require.NoError(t, err)
	// North half plus the zone that sits in the subtracted south.
	assert.InDelta(t, 54.0, geo.Area(g), 1e-9)
}

func TestDisputedRemainder(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyDisputedRemainder, Adm0A3: "TST",
		SubtractDisputed: []string{"Disputed Zone"},
	}
	g, err := e.DisputedRemainder(d)
	require.NoError(t, err)
	assert.InDelta(t, 96.0, geo.Area(g), 1e-9)
}

func TestDisputedRemainderWithoutSubtractions(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyDisputedRemainder, Adm0A3: "TST",
	}
	g, err := e.DisputedRemainder(d)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, geo.Area(g), 1e-9)
}

func TestDisputedLookup(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Name = "Disputed Zone"
	d.Extraction = &schema.Extraction{Strategy: schema.StrategyDisputed}
	g, err := e.Disputed(d)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, geo.Area(g), 1e-9)
}

func TestDisputedSubstringMatch(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{Strategy: schema.StrategyDisputed, NEName: "disputed"}
	g, err := e.Disputed(d)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, geo.Area(g), 1e-9)
}

func TestDisputedNotFound(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{Strategy: schema.StrategyDisputed, NEName: "Atlantis"}
	_, err := e.Disputed(d)
	assert.Error(t, err)
}

func TestClipEuropeSide(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyClip, Adm0A3: "TST", Side: schema.SideEurope,
	}
	g, err := e.Clip(d, nil)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, geo.Area(g), 1e-6)
	assert.LessOrEqual(t, g.Bound().Max[0], 15.5)
}

func TestClipAsiaSide(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyClip, Adm0A3: "TST", Side: schema.SideAsia,
	}
	g, err := e.Clip(d, nil)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, geo.Area(g), 1e-6)
	assert.GreaterOrEqual(t, g.Bound().Min[0], 14.5)
}

func TestClipSubtractsBuiltFeatures(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyClip, Adm0A3: "TST", Side: schema.SideEurope,
		SubtractIndices: []int{7},
	}
	built := Built{7: &schema.Feature{Geometry: box(10, 10, 12, 20)}}
	g, err := e.Clip(d, built)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, geo.Area(g), 1e-6)
}

func TestClipSubtractsSubunits(t *testing.T) {
	set := testSet()
	set.Subunits.Rows = append(set.Subunits.Rows, layers.Row{
		Geometry: box(10, 10, 12, 20),
		Attrs:    map[string]string{"SU_A3": "TSC"},
	})
	splitter, err := geo.NewSplitter(orb.MultiLineString{{{15, -90}, {15, 90}}})
	require.NoError(t, err)
	e := NewExtractor(set, splitter)

	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyClip, Adm0A3: "TST", Side: schema.SideEurope,
		SubtractSuA3: []string{"TSC"},
	}
	g, err := e.Clip(d, nil)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, geo.Area(g), 1e-6)
}

// Splitland: a mainland west of the boundary plus two islands east of
// it, one inside the absorb window and one far beyond it.
func splitlandExtractor(t *testing.T) *Extractor {
	t.Helper()
	set := testSet()
	set.Subunits.Rows = append(set.Subunits.Rows,
		layers.Row{Geometry: box(10, 10, 14, 20), Attrs: map[string]string{"ADM0_A3": "SPL"}},
		layers.Row{Geometry: box(16, 10, 18, 12), Attrs: map[string]string{"ADM0_A3": "SPL"}},
		layers.Row{Geometry: box(30, 10, 32, 12), Attrs: map[string]string{"ADM0_A3": "SPL"}},
	)
	splitter, err := geo.NewSplitter(orb.MultiLineString{{{15, -90}, {15, 90}}})
	require.NoError(t, err)
	return NewExtractor(set, splitter)
}

func TestClipAbsorbLonRangeEurope(t *testing.T) {
	e := splitlandExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyClip, Adm0A3: "SPL", Side: schema.SideEurope,
		AbsorbLonRange: &schema.LonRange{15, 20},
	}
	g, err := e.Clip(d, nil)
	require.NoError(t, err)

	// The near island is absorbed into Europe, the far one is not.
	assert.InDelta(t, 44.0, geo.Area(g), 1e-6)
	assert.InDelta(t, 18.0, g.Bound().Max[0], 1e-6)
}

func TestClipAbsorbLonRangeAsia(t *testing.T) {
	e := splitlandExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyClip, Adm0A3: "SPL", Side: schema.SideAsia,
		AbsorbLonRange: &schema.LonRange{15, 20},
	}
	g, err := e.Clip(d, nil)
	require.NoError(t, err)

	// Asia drops the part Europe absorbed and keeps the far island.
	assert.InDelta(t, 4.0, geo.Area(g), 1e-6)
	assert.InDelta(t, 30.0, g.Bound().Min[0], 1e-6)
}

func TestIslandBboxByCentroid(t *testing.T) {
	set := testSet()
	set.Subunits.Rows = []layers.Row{{
		Geometry: orb.MultiPolygon{box(10, 10, 20, 20), box(40, 10, 42, 12)},
		Attrs:    map[string]string{"ADM0_A3": "TST"},
	}}
	splitter, err := geo.NewSplitter(orb.MultiLineString{{{15, -90}, {15, 90}}})
	require.NoError(t, err)
	e := NewExtractor(set, splitter)

	bbox := schema.Bbox{39, 9, 43, 13}
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyIslandBbox, ParentAdm0A3: "TST", Bbox: &bbox,
	}
	g, err := e.IslandBbox(d)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, geo.Area(g), 1e-9)
}

func TestIslandBboxIntersectsFallback(t *testing.T) {
	e := testExtractor(t)
	// Box off the parent's centroid but overlapping its edge.
	bbox := schema.Bbox{19, 9, 25, 12}
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyIslandBbox, ParentAdm0A3: "TST", Bbox: &bbox,
	}
	g, err := e.IslandBbox(d)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, geo.Area(g), 1e-9)
}

func TestIslandBboxFromAdmin1Parent(t *testing.T) {
	e := testExtractor(t)
	bbox := schema.Bbox{9, 14, 21, 21}
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy:     schema.StrategyIslandBbox,
		ParentAdm0A3: "TST", ParentAdmin1: "North Province", Bbox: &bbox,
	}
	g, err := e.IslandBbox(d)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, geo.Area(g), 1e-9)
}

func TestIslandBboxNoMatchFails(t *testing.T) {
	e := testExtractor(t)
	bbox := schema.Bbox{100, 100, 101, 101}
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyIslandBbox, ParentAdm0A3: "TST", Bbox: &bbox,
	}
	_, err := e.IslandBbox(d)
	assert.Error(t, err)
}

func TestGroupRemainderSubtractsBuilt(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyGroupRemainder, Adm0A3: "TST",
		SubtractIndices: []int{2},
	}
	built := Built{2: &schema.Feature{Geometry: box(10, 15, 20, 20)}}
	g, err := e.GroupRemainder(d, built)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, geo.Area(g), 1e-9)
	assert.InDelta(t, 12.5, geo.Centroid(g)[1], 1e-9)
}

func TestGroupRemainderWithoutIndices(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyGroupRemainder, Adm0A3: "TST",
	}
	g, err := e.GroupRemainder(d, Built{})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, geo.Area(g), 1e-9)
}

func TestGroupRemainderMissingSibling(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyGroupRemainder, Adm0A3: "TST",
		SubtractIndices: []int{42},
	}

	// An index absent from the built map contributes nothing; the
	// full country comes back.
	g, err := e.GroupRemainder(d, Built{})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, geo.Area(g), 1e-9)
}

func TestGroupRemainderEmptyFails(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyGroupRemainder, Adm0A3: "TST",
		SubtractIndices: []int{2},
	}
	built := Built{2: &schema.Feature{Geometry: box(0, 0, 30, 30)}}
	_, err := e.GroupRemainder(d, built)
	assert.Error(t, err)
}

func TestAntarcticRawWedge(t *testing.T) {
	e := testExtractor(t)
	lonWest, lonEast := 0.0, 90.0
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyAntarctic, LonWest: &lonWest, LonEast: &lonEast,
	}
	g, err := e.Antarctic(d)
	require.NoError(t, err)
	assert.InDelta(t, 2700.0, geo.Area(g), 1e-6)
}

func TestAntarcticAntimeridianSector(t *testing.T) {
	e := testExtractor(t)
	lonWest, lonEast := 160.0, -150.0
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyAntarctic, LonWest: &lonWest, LonEast: &lonEast,
	}
	g, err := e.Antarctic(d)
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, geo.Area(g), 1e-6)
}

func TestAntarcticMultiSector(t *testing.T) {
	e := testExtractor(t)
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyAntarctic,
		Sectors: []schema.Sector{
			{LonWest: 0, LonEast: 10},
			{LonWest: 20, LonEast: 30},
		},
	}
	g, err := e.Antarctic(d)
	require.NoError(t, err)
	assert.InDelta(t, 600.0, geo.Area(g), 1e-6)
}

func TestAntarcticClippedToCoastline(t *testing.T) {
	set := testSet()
	set.Units.Rows = append(set.Units.Rows, layers.Row{
		Geometry: box(0, -90, 90, -70),
		Attrs:    map[string]string{"ADM0_A3": "ATA"},
	})
	splitter, err := geo.NewSplitter(orb.MultiLineString{{{15, -90}, {15, 90}}})
	require.NoError(t, err)
	e := NewExtractor(set, splitter)

	lonWest, lonEast := 0.0, 90.0
	d := baseDest()
	d.Extraction = &schema.Extraction{
		Strategy: schema.StrategyAntarctic, LonWest: &lonWest, LonEast: &lonEast,
	}
	g, err := e.Antarctic(d)
	require.NoError(t, err)
	assert.InDelta(t, 1800.0, geo.Area(g), 1e-6)
}

func TestPointGeometry(t *testing.T) {
	e := testExtractor(t)
	lat, lon := -9.2, -171.85
	d := baseDest()
	d.Extraction = &schema.Extraction{Strategy: schema.StrategyPoint, Lat: &lat, Lon: &lon}
	g, err := e.Point(d)
	require.NoError(t, err)

	pt, ok := g.(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, lon, pt[0], 1e-9)
	assert.InDelta(t, lat, pt[1], 1e-9)
}
