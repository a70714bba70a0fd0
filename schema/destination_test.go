package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDestination() *Destination {
	n3 := 999
	return &Destination{
		TccIndex:  1,
		Name:      "Testland",
		Region:    "Test Region",
		IsoA2:     "TS",
		IsoA3:     "TST",
		IsoN3:     &n3,
		Sovereign: "Testland",
		Type:      TypeCountry,
	}
}

func TestValidateMinimalDestination(t *testing.T) {
	assert.NoError(t, validDestination().Validate())
}

func TestValidateRejectsZeroIndex(t *testing.T) {
	d := validDestination()
	d.TccIndex = 0
	assert.Error(t, d.Validate())
}

func TestValidateRejectsMissingName(t *testing.T) {
	d := validDestination()
	d.Name = ""
	assert.Error(t, d.Validate())
}

func TestValidateRejectsUnknownType(t *testing.T) {
	d := validDestination()
	d.Type = "planet"
	assert.Error(t, d.Validate())
}

func TestStrategyDefaultsToDirect(t *testing.T) {
	assert.Equal(t, StrategyDirect, validDestination().Strategy())
}

func TestDisputedSubtractAliasNormalized(t *testing.T) {
	e := &Extraction{Strategy: "disputed_subtract", Adm0A3: "TST"}
	require.NoError(t, e.Validate())
	assert.Equal(t, StrategyDisputedRemainder, e.Strategy)
}

func TestValidateSubunitRequiresCode(t *testing.T) {
	e := &Extraction{Strategy: StrategySubunit}
	assert.Error(t, e.Validate())
}

func TestValidateAdmin1RequiresNames(t *testing.T) {
	e := &Extraction{Strategy: StrategyAdmin1, Adm0A3: "TST"}
	assert.Error(t, e.Validate())
}

func TestValidateClipRequiresSide(t *testing.T) {
	e := &Extraction{Strategy: StrategyClip, Adm0A3: "TST"}
	assert.Error(t, e.Validate())

	e.Side = SideEurope
	assert.NoError(t, e.Validate())
}

func TestValidateIslandBboxRequiresParent(t *testing.T) {
	bbox := Bbox{0, 0, 1, 1}
	e := &Extraction{Strategy: StrategyIslandBbox, Bbox: &bbox}
	assert.Error(t, e.Validate())

	e.ParentAdm0A3 = "TST"
	assert.NoError(t, e.Validate())
}

func TestValidateAntarcticRequiresSectorOrRange(t *testing.T) {
	e := &Extraction{Strategy: StrategyAntarctic}
	assert.Error(t, e.Validate())

	e.Sectors = []Sector{{LonWest: 0, LonEast: 10}}
	assert.NoError(t, e.Validate())
}

func TestValidatePointRequiresCoordinates(t *testing.T) {
	e := &Extraction{Strategy: StrategyPoint}
	assert.Error(t, e.Validate())

	lat, lon := 10.0, 20.0
	e.Lat, e.Lon = &lat, &lon
	assert.NoError(t, e.Validate())
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	e := &Extraction{Strategy: "teleport"}
	assert.Error(t, e.Validate())
}

func TestBboxAccessors(t *testing.T) {
	b := Bbox{-155, -28, -144, -20}
	assert.Equal(t, -155.0, b.West())
	assert.Equal(t, -28.0, b.South())
	assert.Equal(t, -144.0, b.East())
	assert.Equal(t, -20.0, b.North())
}

func TestLonRangeContains(t *testing.T) {
	r := LonRange{30, 59}
	assert.True(t, r.Contains(45))
	assert.False(t, r.Contains(60))
}

func TestPropertiesCarriesAllKeys(t *testing.T) {
	props := validDestination().Properties()
	assert.Equal(t, 1, props["tcc_index"])
	assert.Equal(t, "Testland", props["name"])
	assert.Equal(t, "TST", props["iso_a3"])
	assert.Equal(t, 999, props["iso_n3"])
}

func TestPropertiesNullsMissingCodes(t *testing.T) {
	d := validDestination()
	d.IsoA2, d.IsoA3, d.IsoN3 = "", "", nil
	props := d.Properties()
	assert.Nil(t, props["iso_a2"])
	assert.Nil(t, props["iso_a3"])
	assert.Nil(t, props["iso_n3"])
}
