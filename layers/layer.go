// Package layers models the four source vector layers the extractors
// read: country subunits, country units, admin-1 provinces, and
// disputed areas. Layers are read-only after loading.
package layers

import (
	"strings"

	"github.com/paulmach/orb"

	"github.com/tccmaps/atlas/geo"
)

// Field search orders are fixed. Two different priority orders exist
// for the admin-0 code fields: feature lookup favors the subunit code,
// whole-country lookup favors the admin code.
var (
	DirectCodeFields  = []string{"SU_A3", "ADM0_A3", "ISO_A3", "GU_A3"}
	CountryCodeFields = []string{"ADM0_A3", "SU_A3", "GU_A3", "ISO_A3"}

	Admin1NameFields = []string{"name", "name_en", "NAME", "NAME_EN"}

	// The disputed layer is searched on four name fields for lookups
	// but only three when subtracting from a country remainder.
	DisputedNameFields         = []string{"NAME", "BRK_NAME", "NAME_LONG", "ADMIN"}
	DisputedSubtractNameFields = []string{"NAME", "BRK_NAME", "NAME_LONG"}
)

// Row is one source feature: a geometry plus its attribute fields.
type Row struct {
	Geometry orb.Geometry
	Attrs    map[string]string
}

// Attr returns the named attribute, empty when absent.
func (r Row) Attr(field string) string {
	return r.Attrs[field]
}

// Layer is a labeled, immutable collection of rows.
type Layer struct {
	Name string
	Rows []Row
}

// FilterEq returns the rows whose field equals value exactly.
func (l *Layer) FilterEq(field, value string) []Row {
	var out []Row
	for _, r := range l.Rows {
		if v, ok := r.Attrs[field]; ok && v == value {
			out = append(out, r)
		}
	}
	return out
}

// FilterEqFold returns the rows whose field equals value
// case-insensitively.
func (l *Layer) FilterEqFold(field, value string) []Row {
	var out []Row
	for _, r := range l.Rows {
		if v, ok := r.Attrs[field]; ok && strings.EqualFold(v, value) {
			out = append(out, r)
		}
	}
	return out
}

// FilterContainsFold returns the rows whose field contains the
// substring, case-insensitively.
func (l *Layer) FilterContainsFold(field, substr string) []Row {
	sub := strings.ToLower(substr)
	var out []Row
	for _, r := range l.Rows {
		if v, ok := r.Attrs[field]; ok && strings.Contains(strings.ToLower(v), sub) {
			out = append(out, r)
		}
	}
	return out
}

// Dissolve unions the geometries of a set of rows into one.
func Dissolve(rows []Row) (orb.Geometry, error) {
	gs := make([]orb.Geometry, 0, len(rows))
	for _, r := range rows {
		gs = append(gs, r.Geometry)
	}
	return geo.Dissolve(gs...)
}

// FindByCode searches the code fields in order and dissolves the first
// field's matches. A field that matches nothing falls through to the
// next; the first non-empty match wins.
func (l *Layer) FindByCode(code string, fields []string) (orb.Geometry, bool) {
	for _, field := range fields {
		rows := l.FilterEq(field, code)
		if len(rows) == 0 {
			continue
		}
		g, err := Dissolve(rows)
		if err != nil || geo.Empty(g) {
			continue
		}
		return g, true
	}
	return nil, false
}

// Set bundles the four source layers.
type Set struct {
	Subunits *Layer
	Units    *Layer
	Admin1   *Layer
	Disputed *Layer
}

// CountryGeom finds the full country geometry for an admin-0 code,
// searching subunits before units.
func (s *Set) CountryGeom(code string) (orb.Geometry, bool) {
	for _, l := range []*Layer{s.Subunits, s.Units} {
		if g, ok := l.FindByCode(code, CountryCodeFields); ok {
			return g, true
		}
	}
	return nil, false
}
