package schema

import (
	"fmt"
)

// FeatureType classifies a destination in the output properties.
type FeatureType string

const (
	TypeCountry     FeatureType = "country"
	TypeTerritory   FeatureType = "territory"
	TypeDisputed    FeatureType = "disputed"
	TypeSubnational FeatureType = "subnational"
	TypeAntarctic   FeatureType = "antarctic"
)

// Strategy names one of the twelve extraction recipes.
type Strategy string

const (
	StrategyDirect            Strategy = "direct"
	StrategySubunit           Strategy = "subunit"
	StrategyAdmin1            Strategy = "admin1"
	StrategyRemainder         Strategy = "remainder"
	StrategyGroupRemainder    Strategy = "group_remainder"
	StrategyClip              Strategy = "clip"
	StrategyDisputed          Strategy = "disputed"
	StrategyDisputedRemainder Strategy = "disputed_remainder"
	StrategyIslandBbox        Strategy = "island_bbox"
	StrategyAntarctic         Strategy = "antarctic"
	StrategyPoint             Strategy = "point"

	// Catalog alias for disputed_remainder, normalized at load time.
	strategyDisputedSubtract Strategy = "disputed_subtract"
)

// Bbox is a (west, south, east, north) bounding box in degrees.
type Bbox [4]float64

func (b Bbox) West() float64  { return b[0] }
func (b Bbox) South() float64 { return b[1] }
func (b Bbox) East() float64  { return b[2] }
func (b Bbox) North() float64 { return b[3] }

// LonRange is an inclusive [west, east] longitude window.
type LonRange [2]float64

func (r LonRange) Contains(lon float64) bool { return r[0] <= lon && lon <= r[1] }

// Sector is one Antarctic wedge definition.
type Sector struct {
	LonWest float64 `yaml:"lon_west"`
	LonEast float64 `yaml:"lon_east"`
}

// Extraction carries the strategy tag plus the parameters that strategy
// needs. Fields irrelevant to the tagged strategy stay zero; Validate
// rejects entries missing the parameters their strategy requires, so
// extractors never have to re-check at call time.
type Extraction struct {
	Strategy Strategy `yaml:"strategy"`

	// direct / remainder / group_remainder / clip / disputed_remainder
	Adm0A3 string `yaml:"adm0_a3"`

	// subunit
	SuA3        string `yaml:"su_a3"`
	SubunitName string `yaml:"ne_name"`

	// disputed: lookup term against the disputed layer's name fields.
	// Falls back to the destination display name when empty.
	NEName string `yaml:"name"`

	// admin1 / remainder
	Admin1         []string `yaml:"admin1"`
	SubtractAdmin1 []string `yaml:"subtract_admin1"`

	// remainder / disputed_remainder
	SubtractDisputed []string `yaml:"subtract_disputed"`
	MergeDisputed    []string `yaml:"merge_disputed"`

	// direct
	MergeA3 []string `yaml:"merge_a3"`

	// disputed
	AlsoMerge []string `yaml:"also_merge"`

	// group_remainder / clip
	SubtractIndices []int    `yaml:"subtract_indices"`
	SubtractSuA3    []string `yaml:"subtract_su_a3"`

	// island_bbox
	ParentAdm0A3 string `yaml:"parent_adm0_a3"`
	ParentAdmin1 string `yaml:"parent_admin1"`
	Bbox         *Bbox  `yaml:"bbox"`

	// clip
	Side           Side      `yaml:"side"`
	AbsorbLonRange *LonRange `yaml:"absorb_lon_range"`

	// antarctic
	LonWest  *float64 `yaml:"lon_west"`
	LonEast  *float64 `yaml:"lon_east"`
	LatNorth *float64 `yaml:"lat_north"`
	Sectors  []Sector `yaml:"sectors"`

	// point
	Lat *float64 `yaml:"lat"`
	Lon *float64 `yaml:"lon"`
}

// Side selects which part of a transcontinental split to keep.
type Side string

const (
	SideEurope Side = "europe"
	SideAsia   Side = "asia"
)

// Validate checks that the extraction carries the parameters its
// strategy requires. The alias disputed_subtract is normalized to
// disputed_remainder here.
func (e *Extraction) Validate() error {
	if e.Strategy == strategyDisputedSubtract {
		e.Strategy = StrategyDisputedRemainder
	}

	switch e.Strategy {
	case StrategyDirect:
		// code defaults to the record's iso_a3, name match is the
		// final fallback, so nothing is strictly required here
		return nil
	case StrategySubunit:
		if e.SuA3 == "" {
			return fmt.Errorf("subunit: su_a3 is required")
		}
	case StrategyAdmin1:
		if e.Adm0A3 == "" || len(e.Admin1) == 0 {
			return fmt.Errorf("admin1: adm0_a3 and admin1 names are required")
		}
	case StrategyRemainder, StrategyGroupRemainder, StrategyDisputedRemainder:
		if e.Adm0A3 == "" {
			return fmt.Errorf("%s: adm0_a3 is required", e.Strategy)
		}
	case StrategyClip:
		if e.Adm0A3 == "" {
			return fmt.Errorf("clip: adm0_a3 is required")
		}
		if e.Side != SideEurope && e.Side != SideAsia {
			return fmt.Errorf("clip: side must be %q or %q, got %q", SideEurope, SideAsia, e.Side)
		}
	case StrategyDisputed:
		// lookup term falls back to the destination name
		return nil
	case StrategyIslandBbox:
		if e.Bbox == nil {
			return fmt.Errorf("island_bbox: bbox is required")
		}
		if e.ParentAdm0A3 == "" && e.ParentAdmin1 == "" {
			return fmt.Errorf("island_bbox: parent_adm0_a3 or parent_admin1 is required")
		}
	case StrategyAntarctic:
		if len(e.Sectors) == 0 && (e.LonWest == nil || e.LonEast == nil) {
			return fmt.Errorf("antarctic: sectors or lon_west/lon_east are required")
		}
	case StrategyPoint:
		if e.Lat == nil || e.Lon == nil {
			return fmt.Errorf("point: lat and lon are required")
		}
	default:
		return fmt.Errorf("unknown strategy %q", e.Strategy)
	}
	return nil
}

// Destination is one immutable catalog record.
type Destination struct {
	TccIndex   int         `yaml:"tcc_index"`
	Name       string      `yaml:"name"`
	Region     string      `yaml:"region"`
	IsoA2      string      `yaml:"iso_a2"`
	IsoA3      string      `yaml:"iso_a3"`
	IsoN3      *int        `yaml:"iso_n3"`
	Sovereign  string      `yaml:"sovereign"`
	Type       FeatureType `yaml:"type"`
	Extraction *Extraction `yaml:"extraction"`
}

// Strategy returns the extraction strategy, defaulting to direct for
// records without an explicit extraction block.
func (d *Destination) Strategy() Strategy {
	if d.Extraction == nil {
		return StrategyDirect
	}
	return d.Extraction.Strategy
}

// Validate checks record identity and the extraction block, if any.
func (d *Destination) Validate() error {
	if d.TccIndex < 1 {
		return fmt.Errorf("tcc_index must be positive, got %d", d.TccIndex)
	}
	if d.Name == "" || d.Region == "" || d.Sovereign == "" {
		return fmt.Errorf("[%d] name, region and sovereign are required", d.TccIndex)
	}
	switch d.Type {
	case TypeCountry, TypeTerritory, TypeDisputed, TypeSubnational, TypeAntarctic:
	default:
		return fmt.Errorf("[%d] %s: unknown type %q", d.TccIndex, d.Name, d.Type)
	}
	if d.Extraction != nil {
		if err := d.Extraction.Validate(); err != nil {
			return fmt.Errorf("[%d] %s: %w", d.TccIndex, d.Name, err)
		}
	}
	return nil
}
