// Package catalog holds the fixed TCC destination catalog: 330 records,
// each with an extraction recipe. The data lives in destinations.yaml,
// embedded at build time and validated once on load.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/tccmaps/atlas/schema"
)

//go:embed destinations.yaml
var destinationsYAML []byte

// Total is the expected number of destinations.
const Total = 330

// Load parses and validates the embedded catalog. The returned slice is
// in catalog order (ascending tcc_index) and must be treated as
// immutable by callers.
func Load() ([]*schema.Destination, error) {
	var dests []*schema.Destination
	if err := yaml.Unmarshal(destinationsYAML, &dests); err != nil {
		return nil, fmt.Errorf("failed to parse destination catalog: %w", err)
	}

	if len(dests) != Total {
		return nil, fmt.Errorf("catalog has %d destinations, expected %d", len(dests), Total)
	}

	seen := make(map[int]*schema.Destination, len(dests))
	for _, d := range dests {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.TccIndex > Total {
			return nil, fmt.Errorf("[%d] %s: tcc_index out of range [1, %d]", d.TccIndex, d.Name, Total)
		}
		if dup, ok := seen[d.TccIndex]; ok {
			return nil, fmt.Errorf("duplicate tcc_index %d (%s, %s)", d.TccIndex, dup.Name, d.Name)
		}
		seen[d.TccIndex] = d
	}

	if err := checkDependencyDepth(seen); err != nil {
		return nil, err
	}

	return dests, nil
}

// checkDependencyDepth enforces the structural precondition behind the
// two-pass build: a destination that subtracts others by index (group
// remainders and clips) may only subtract destinations that are
// themselves built in the first pass. Without this, pass two could
// read an index that is never going to exist.
func checkDependencyDepth(byIndex map[int]*schema.Destination) error {
	for _, d := range byIndex {
		if !subtractsByIndex(d) {
			continue
		}
		for _, idx := range d.Extraction.SubtractIndices {
			dep, ok := byIndex[idx]
			if !ok {
				return fmt.Errorf("[%d] %s: subtract index %d is not in the catalog", d.TccIndex, d.Name, idx)
			}
			if subtractsByIndex(dep) {
				return fmt.Errorf("[%d] %s: subtract index %d is itself a second-pass destination", d.TccIndex, d.Name, idx)
			}
		}
	}
	return nil
}

func subtractsByIndex(d *schema.Destination) bool {
	switch d.Strategy() {
	case schema.StrategyGroupRemainder:
		return true
	case schema.StrategyClip:
		return len(d.Extraction.SubtractIndices) > 0
	}
	return false
}
