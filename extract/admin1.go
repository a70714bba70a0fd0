package extract

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"

	"github.com/tccmaps/atlas/geo"
	"github.com/tccmaps/atlas/layers"
	"github.com/tccmaps/atlas/schema"
)

// Admin1 dissolves a set of named provinces into one feature. The
// province table is first narrowed to the destination's country.
func (e *Extractor) Admin1(d *schema.Destination) (orb.Geometry, error) {
	x := d.Extraction

	country := e.set.Admin1.FilterEq("adm0_a3", x.Adm0A3)
	if len(country) == 0 && d.IsoA2 != "" {
		country = e.set.Admin1.FilterEq("iso_a2", d.IsoA2)
	}

	matched := matchProvinces(country, x.Admin1)
	if len(matched) == 0 {
		log.WithField("prefix", logPrefix).Warnf(
			"no admin1 matches for %s (adm0=%s, names=%v)", d.Name, x.Adm0A3, x.Admin1)
		return nil, fmt.Errorf("no admin1 matches for %q", d.Name)
	}

	return layers.Dissolve(matched)
}

// Remainder extracts a country minus named provinces, then subtracts
// and merges disputed areas. The order is fixed: provinces out first,
// disputed areas out second, disputed areas in last.
func (e *Extractor) Remainder(d *schema.Destination) (orb.Geometry, error) {
	x := d.Extraction

	result, ok := e.set.CountryGeom(x.Adm0A3)
	if !ok {
		log.WithField("prefix", logPrefix).Warnf("could not find country %s for remainder", x.Adm0A3)
		return nil, fmt.Errorf("no country geometry for %q", x.Adm0A3)
	}

	if len(x.SubtractAdmin1) > 0 {
		country := e.set.Admin1.FilterEq("adm0_a3", x.Adm0A3)
		matched := matchProvinces(country, x.SubtractAdmin1)
		if len(matched) == 0 {
			log.WithField("prefix", logPrefix).Warnf("no admin1 to subtract for %s", d.Name)
		} else {
			sub, err := layers.Dissolve(matched)
			if err != nil {
				return nil, err
			}
			result, err = e.subtractRepaired(result, sub)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, name := range x.SubtractDisputed {
		disp, ok := e.findDisputedGeom(name, layers.DisputedSubtractNameFields)
		if !ok {
			continue
		}
		var err error
		result, err = e.subtractRepaired(result, disp)
		if err != nil {
			return nil, err
		}
	}

	for _, name := range x.MergeDisputed {
		disp, ok := e.findDisputedGeom(name, layers.DisputedSubtractNameFields)
		if !ok {
			continue
		}
		var err error
		result, err = geo.Union(result, disp)
		if err != nil {
			return nil, err
		}
	}

	if geo.Empty(result) {
		log.WithField("prefix", logPrefix).Warnf("remainder is empty for %s", d.Name)
		return nil, fmt.Errorf("remainder is empty for %q", d.Name)
	}

	return result, nil
}

// DisputedRemainder extracts a country minus features from the
// disputed layer.
func (e *Extractor) DisputedRemainder(d *schema.Destination) (orb.Geometry, error) {
	x := d.Extraction

	country, ok := e.set.CountryGeom(x.Adm0A3)
	if !ok {
		return nil, fmt.Errorf("no country geometry for %q", x.Adm0A3)
	}

	if len(x.SubtractDisputed) == 0 {
		return country, nil
	}

	var parts []orb.Geometry
	for _, name := range x.SubtractDisputed {
		if disp, ok := e.findDisputedGeom(name, layers.DisputedSubtractNameFields); ok {
			parts = append(parts, disp)
		}
	}
	if len(parts) == 0 {
		return country, nil
	}

	sub, err := geo.Dissolve(parts...)
	if err != nil {
		return nil, err
	}
	result, err := e.subtractRepaired(country, sub)
	if err != nil {
		return nil, err
	}
	if geo.Empty(result) {
		return nil, fmt.Errorf("disputed remainder is empty for %q", d.Name)
	}
	return result, nil
}

// subtractRepaired repairs the subtrahend before differencing, the
// clipper equivalent of shapely's buffer(0) before difference.
func (e *Extractor) subtractRepaired(from, sub orb.Geometry) (orb.Geometry, error) {
	repaired, err := geo.Repair(sub)
	if err != nil {
		return nil, err
	}
	return geo.Difference(from, repaired)
}

// findDisputedGeom searches the disputed layer's name fields in order
// with a case-insensitive substring match, dissolving the first
// field's rows that hit.
func (e *Extractor) findDisputedGeom(name string, fields []string) (orb.Geometry, bool) {
	for _, field := range fields {
		rows := e.set.Disputed.FilterContainsFold(field, name)
		if len(rows) == 0 {
			continue
		}
		g, err := layers.Dissolve(rows)
		if err != nil || geo.Empty(g) {
			continue
		}
		return g, true
	}
	return nil, false
}

// matchProvinces matches admin-1 rows by name in two phases. The exact
// phase accumulates equality matches across every name field; the
// substring phase runs only when the exact phase found nothing.
// Accumulating across fields lets accented names hit via whichever
// field carries the unaccented variant.
func matchProvinces(rows []layers.Row, names []string) []layers.Row {
	lower := make(map[string]bool, len(names))
	list := make([]string, 0, len(names))
	for _, n := range names {
		l := strings.ToLower(n)
		lower[l] = true
		list = append(list, l)
	}

	matched := make(map[int]bool)
	for _, field := range layers.Admin1NameFields {
		for i, r := range rows {
			if lower[strings.ToLower(r.Attr(field))] {
				matched[i] = true
			}
		}
	}

	if len(matched) == 0 {
		for _, field := range layers.Admin1NameFields {
			for i, r := range rows {
				v := strings.ToLower(r.Attr(field))
				if v == "" {
					continue
				}
				for _, n := range list {
					if strings.Contains(v, n) {
						matched[i] = true
						break
					}
				}
			}
		}
	}

	out := make([]layers.Row, 0, len(matched))
	for i, r := range rows {
		if matched[i] {
			out = append(out, r)
		}
	}
	return out
}
