package schema

import (
	"fmt"
)

const (
	BoundaryCollection = "boundary"
)

type Geometry struct {
	Type        string      `bson:"type" json:"type"`
	Coordinates interface{} `bson:"coordinates" json:"coordinates"`
}

// Boundary is the MongoDB document for one published destination.
type Boundary struct {
	TccIndex  int      `bson:"tcc_index"`
	Name      string   `bson:"name"`
	Region    string   `bson:"region"`
	Sovereign string   `bson:"sovereign"`
	Type      string   `bson:"type"`
	Geometry  Geometry `bson:"geometry"`
}

// NewBoundary converts a built feature into its mongo document.
func NewBoundary(f *Feature) (*Boundary, error) {
	idx, ok := f.Properties["tcc_index"].(int)
	if !ok {
		return nil, fmt.Errorf("feature has no tcc_index")
	}
	name, _ := f.Properties["name"].(string)
	region, _ := f.Properties["region"].(string)
	sovereign, _ := f.Properties["sovereign"].(string)
	ftype, _ := f.Properties["type"].(string)

	return &Boundary{
		TccIndex:  idx,
		Name:      name,
		Region:    region,
		Sovereign: sovereign,
		Type:      ftype,
		Geometry: Geometry{
			Type:        f.Geometry.GeoJSONType(),
			Coordinates: f.Geometry,
		},
	}, nil
}
