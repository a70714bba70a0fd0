package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// Segments further apart than this are left out of the ordered path.
// Tuned against the Trubetskoy boundary dataset, whose merged chains
// sit ~0.003 degrees apart.
const gapThreshold = 5.0

// MergeSegments joins segments that share exact endpoints into maximal
// chains, the linemerge step of path construction.
func MergeSegments(lines orb.MultiLineString) orb.MultiLineString {
	chains := make([]orb.LineString, 0, len(lines))
	for _, seg := range lines {
		if len(seg) < 2 {
			continue
		}
		chains = append(chains, append(orb.LineString(nil), seg...))
	}

	for {
		joined := false
	scan:
		for i := 0; i < len(chains); i++ {
			for j := i + 1; j < len(chains); j++ {
				if c, ok := joinChains(chains[i], chains[j]); ok {
					chains[i] = c
					chains = append(chains[:j], chains[j+1:]...)
					joined = true
					break scan
				}
			}
		}
		if !joined {
			break
		}
	}
	return orb.MultiLineString(chains)
}

func joinChains(a, b orb.LineString) (orb.LineString, bool) {
	aStart, aEnd := a[0], a[len(a)-1]
	bStart, bEnd := b[0], b[len(b)-1]

	switch {
	case aEnd == bStart:
		return append(a, b[1:]...), true
	case aEnd == bEnd:
		return append(a, reversed(b)[1:]...), true
	case aStart == bEnd:
		return append(b, a[1:]...), true
	case aStart == bStart:
		return append(reversed(b), a[1:]...), true
	}
	return nil, false
}

func reversed(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}

// BuildPath turns a noisy, disconnected set of boundary segments into
// one ordered coordinate path. Chains that merge on exact endpoints are
// joined first; the rest are chained greedily by nearest endpoint,
// starting from the southernmost chain. Chains further than the gap
// threshold from the growing path are dropped. A multi-chain result is
// reversed if needed so the path runs south to north.
func BuildPath(lines orb.MultiLineString) orb.LineString {
	return orderChains(MergeSegments(lines))
}

func orderChains(chains orb.MultiLineString) orb.LineString {
	if len(chains) == 0 {
		return nil
	}
	if len(chains) == 1 {
		return chains[0]
	}

	sort.SliceStable(chains, func(i, j int) bool {
		return southernmost(chains[i]) < southernmost(chains[j])
	})

	path := append(orb.LineString(nil), chains[0]...)
	remaining := append(orb.MultiLineString(nil), chains[1:]...)

	for len(remaining) > 0 {
		end := path[len(path)-1]
		best := -1
		bestDist := math.Inf(1)
		bestReverse := false

		for i, chain := range remaining {
			if d := Dist(end, chain[0]); d < bestDist {
				bestDist, best, bestReverse = d, i, false
			}
			if d := Dist(end, chain[len(chain)-1]); d < bestDist {
				bestDist, best, bestReverse = d, i, true
			}
		}

		if best < 0 || bestDist >= gapThreshold {
			break
		}
		chain := remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)
		if bestReverse {
			chain = reversed(chain)
		}
		path = append(path, chain...)
	}

	if path[0][1] > path[len(path)-1][1] {
		path = reversed(path)
	}
	return path
}

func southernmost(line orb.LineString) float64 {
	min := math.Inf(1)
	for _, p := range line {
		if p[1] < min {
			min = p[1]
		}
	}
	return min
}
