// Package extract implements the per-destination extraction
// strategies and the two-pass build that runs them over the source
// layers.
package extract

import (
	"fmt"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"

	"github.com/tccmaps/atlas/geo"
	"github.com/tccmaps/atlas/layers"
	"github.com/tccmaps/atlas/schema"
)

const logPrefix = "extract"

// Extractor holds the shared inputs every strategy reads: the four
// source layers, the continental splitter, and the Antarctica
// coastline. It is safe for concurrent use once constructed.
type Extractor struct {
	set        *layers.Set
	splitter   *geo.Splitter
	antarctica orb.Geometry
}

// NewExtractor prepares an extractor over the source layers. The
// Antarctica coastline is dissolved up front from the units layer; a
// missing coastline is tolerated, antarctic sectors then fall back to
// their raw wedges.
func NewExtractor(set *layers.Set, splitter *geo.Splitter) *Extractor {
	var antarctica orb.Geometry
	if rows := set.Units.FilterEq("ADM0_A3", "ATA"); len(rows) > 0 {
		g, err := layers.Dissolve(rows)
		if err != nil {
			log.WithField("prefix", logPrefix).WithError(err).Warn("failed to dissolve antarctica coastline")
		} else {
			antarctica = g
		}
	}
	return &Extractor{set: set, splitter: splitter, antarctica: antarctica}
}

// findGeom looks a geometry up by A3 code across both admin-0 layers,
// subunits first.
func (e *Extractor) findGeom(code string) (orb.Geometry, bool) {
	for _, l := range []*layers.Layer{e.set.Subunits, e.set.Units} {
		if g, ok := l.FindByCode(code, layers.DirectCodeFields); ok {
			return g, true
		}
	}
	return nil, false
}

// Direct extracts a destination straight from the admin-0 layers by A3
// code, falling back to a name match, and merges any extra codes in.
func (e *Extractor) Direct(d *schema.Destination) (orb.Geometry, error) {
	code := d.IsoA3
	var mergeA3 []string
	if d.Extraction != nil {
		if d.Extraction.Adm0A3 != "" {
			code = d.Extraction.Adm0A3
		}
		mergeA3 = d.Extraction.MergeA3
	}

	var geom orb.Geometry
	if code != "" {
		if g, ok := e.findGeom(code); ok {
			geom = g
		}
	}

	if geom == nil {
		for _, l := range []*layers.Layer{e.set.Subunits, e.set.Units} {
			rows := l.FilterEqFold("NAME", d.Name)
			if len(rows) == 0 {
				continue
			}
			g, err := layers.Dissolve(rows)
			if err != nil {
				return nil, err
			}
			geom = g
			break
		}
	}

	if geom == nil {
		return nil, fmt.Errorf("no admin-0 feature for %q (code %q)", d.Name, code)
	}

	if len(mergeA3) > 0 {
		parts := []orb.Geometry{geom}
		for _, extra := range mergeA3 {
			if g, ok := e.findGeom(extra); ok {
				parts = append(parts, g)
			}
		}
		merged, err := geo.Dissolve(parts...)
		if err != nil {
			return nil, err
		}
		geom = merged
	}

	return geom, nil
}

// Subunit extracts one named subunit from the subunits layer by SU_A3
// code, narrowed by subunit name when the code matches several rows.
func (e *Extractor) Subunit(d *schema.Destination) (orb.Geometry, error) {
	x := d.Extraction
	matches := e.set.Subunits.FilterEq("SU_A3", x.SuA3)

	if x.SubunitName != "" && len(matches) > 1 {
		named := filterRowsEq(matches, "NAME", x.SubunitName)
		if len(named) > 0 {
			matches = named
		}
	}

	if len(matches) == 0 {
		for _, field := range []string{"NAME_EN", "NAME"} {
			rows := e.set.Subunits.FilterEqFold(field, d.Name)
			if len(rows) > 0 {
				matches = rows
				break
			}
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no subunit for %q (su_a3 %q)", d.Name, x.SuA3)
	}
	return layers.Dissolve(matches)
}

func filterRowsEq(rows []layers.Row, field, value string) []layers.Row {
	var out []layers.Row
	for _, r := range rows {
		if r.Attr(field) == value {
			out = append(out, r)
		}
	}
	return out
}
