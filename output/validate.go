package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tccmaps/atlas/catalog"
)

// RequiredProps are the properties every output feature must carry
// with a non-null value.
var RequiredProps = []string{"tcc_index", "name", "region", "sovereign", "type"}

// Report collects the findings of a validation pass.
type Report struct {
	Features int
	Missing  []int
	Extra    []int
	Errors   []string
}

// OK reports whether the artifact passed every check.
func (r *Report) OK() bool {
	return len(r.Errors) == 0 && len(r.Missing) == 0
}

func (r *Report) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ValidateMerged checks the merged GeoJSON artifact: the full catalog
// present, indices unique, required properties non-null, and every
// feature carrying a geometry.
func ValidateMerged(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc struct {
		Features []struct {
			Geometry   json.RawMessage        `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	report := &Report{Features: len(doc.Features)}
	if len(doc.Features) != catalog.Total {
		report.errorf("expected %d features, got %d", catalog.Total, len(doc.Features))
	}

	seen := make(map[int]bool)
	for _, feat := range doc.Features {
		name, _ := feat.Properties["name"].(string)

		rawIdx, ok := feat.Properties["tcc_index"].(float64)
		if !ok {
			report.errorf("feature missing tcc_index: %s", name)
			continue
		}
		idx := int(rawIdx)

		if seen[idx] {
			report.errorf("duplicate tcc_index: %d", idx)
		}
		seen[idx] = true

		for _, prop := range RequiredProps {
			if v, ok := feat.Properties[prop]; !ok || v == nil {
				report.errorf("[%d] %s: missing %q", idx, name, prop)
			}
		}

		if len(feat.Geometry) == 0 || string(feat.Geometry) == "null" {
			report.errorf("[%d] %s: missing geometry", idx, name)
		}
	}

	for idx := 1; idx <= catalog.Total; idx++ {
		if !seen[idx] {
			report.Missing = append(report.Missing, idx)
		}
	}
	for idx := range seen {
		if idx < 1 || idx > catalog.Total {
			report.Extra = append(report.Extra, idx)
		}
	}
	sort.Ints(report.Extra)

	return report, nil
}

// ValidateTopology checks a TopoJSON artifact: the geometry count
// across all objects must equal the catalog size.
func ValidateTopology(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc struct {
		Objects map[string]struct {
			Geometries []json.RawMessage `json:"geometries"`
		} `json:"objects"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	report := &Report{}
	for _, obj := range doc.Objects {
		report.Features += len(obj.Geometries)
	}
	if report.Features != catalog.Total {
		report.errorf("expected %d geometries across objects, got %d", catalog.Total, report.Features)
	}
	return report, nil
}
