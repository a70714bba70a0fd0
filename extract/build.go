package extract

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tccmaps/atlas/geo"
	"github.com/tccmaps/atlas/layers"
	"github.com/tccmaps/atlas/schema"
)

// Failure records one destination that could not be built. The build
// never aborts on a failed destination; failures are reported at the
// end instead.
type Failure struct {
	Index    int
	Name     string
	Strategy schema.Strategy
	Err      error
}

func (f Failure) String() string {
	return fmt.Sprintf("[%d] %s (strategy=%s): %v", f.Index, f.Name, f.Strategy, f.Err)
}

// Result is the outcome of a full build.
type Result struct {
	Features Built
	Failures []Failure
}

// Sorted returns the built features ordered by catalog index.
func (r *Result) Sorted() []*schema.Feature {
	indices := make([]int, 0, len(r.Features))
	for idx := range r.Features {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	out := make([]*schema.Feature, 0, len(indices))
	for _, idx := range indices {
		out = append(out, r.Features[idx])
	}
	return out
}

// Extract dispatches a destination to its strategy. Group remainders
// and clips read already-built features from built.
func (e *Extractor) Extract(d *schema.Destination, built Built) (orb.Geometry, error) {
	switch d.Strategy() {
	case schema.StrategyDirect:
		return e.Direct(d)
	case schema.StrategySubunit:
		return e.Subunit(d)
	case schema.StrategyAdmin1:
		return e.Admin1(d)
	case schema.StrategyRemainder:
		return e.Remainder(d)
	case schema.StrategyDisputedRemainder:
		return e.DisputedRemainder(d)
	case schema.StrategyClip:
		return e.Clip(d, built)
	case schema.StrategyDisputed:
		return e.Disputed(d)
	case schema.StrategyIslandBbox:
		return e.IslandBbox(d)
	case schema.StrategyGroupRemainder:
		return e.GroupRemainder(d, built)
	case schema.StrategyAntarctic:
		return e.Antarctic(d)
	case schema.StrategyPoint:
		return e.Point(d)
	default:
		return nil, fmt.Errorf("unknown strategy %q", d.Strategy())
	}
}

// Build runs every destination through its strategy in two passes.
// The first pass builds all independent destinations concurrently;
// the second runs destinations that subtract first-pass results
// (group remainders and clips with subtract indices) sequentially in
// catalog order. A failed destination is recorded and skipped, never
// fatal.
func Build(ctx context.Context, dests []*schema.Destination, set *layers.Set, splitter *geo.Splitter) (*Result, error) {
	e := NewExtractor(set, splitter)

	log.WithField("prefix", logPrefix).Infof("building %d destinations", len(dests))

	type slot struct {
		geom orb.Geometry
		err  error
	}
	slots := make([]slot, len(dests))
	var deferred []int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, d := range dests {
		if needsBuilt(d) {
			deferred = append(deferred, i)
			continue
		}
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			geom, err := e.Extract(d, nil)
			slots[i] = slot{geom: geom, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Features: make(Built, len(dests))}
	for i, d := range dests {
		if needsBuilt(d) {
			continue
		}
		s := slots[i]
		if s.err != nil || geo.Empty(s.geom) {
			if s.err == nil {
				s.err = fmt.Errorf("empty geometry")
			}
			result.fail(d, s.err)
			continue
		}
		result.Features[d.TccIndex] = newFeature(d, s.geom)
	}

	for _, i := range deferred {
		d := dests[i]
		geom, err := e.Extract(d, result.Features)
		if err != nil {
			result.fail(d, err)
			continue
		}
		result.Features[d.TccIndex] = newFeature(d, geom)
	}

	log.WithField("prefix", logPrefix).Infof(
		"built %d/%d destinations (%d failed)",
		len(result.Features), len(dests), len(result.Failures))

	return result, nil
}

// needsBuilt reports whether a destination subtracts other built
// destinations and must therefore wait for the first pass.
func needsBuilt(d *schema.Destination) bool {
	switch d.Strategy() {
	case schema.StrategyGroupRemainder:
		return true
	case schema.StrategyClip:
		return len(d.Extraction.SubtractIndices) > 0
	}
	return false
}

func (r *Result) fail(d *schema.Destination, err error) {
	f := Failure{Index: d.TccIndex, Name: d.Name, Strategy: d.Strategy(), Err: err}
	log.WithField("prefix", logPrefix).Warnf("FAILED: %s", f)
	r.Failures = append(r.Failures, f)
}

func newFeature(d *schema.Destination, geom orb.Geometry) *schema.Feature {
	f := schema.NewFeature(d, geom)
	if d.Strategy() == schema.StrategyPoint {
		f.Properties["is_point"] = true
	}
	return f
}
