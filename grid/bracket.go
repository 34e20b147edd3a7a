package grid

import (
	"math"
	"sort"
)

// Bracketing holds the interpolation endpoints chosen on one axis.
//
// Values has one element when the axis degenerates (single available value
// or exact match) and two, ascending, otherwise. T is the interpolation
// fraction (target-lo)/(hi-lo) for two values and zero otherwise. T is not
// clamped: targets outside the grid extent yield T < 0 or T > 1.
type Bracketing struct {
	Values []float64
	T      float64
}

// Degenerate reports whether the axis contributes no interpolation.
func (b Bracketing) Degenerate() bool { return len(b.Values) < 2 }

// Contains reports whether v is one of the selected endpoints.
func (b Bracketing) Contains(v float64) bool {
	for _, s := range b.Values {
		if s == v {
			return true
		}
	}
	return false
}

// Factor returns the axis-local weight of a node whose coordinate is v:
// 1 for a degenerate axis, 1-T for the lower endpoint, T for the upper one
// and 0 for values outside the bracket.
func (b Bracketing) Factor(v float64) float64 {
	switch {
	case len(b.Values) == 1 && b.Values[0] == v:
		return 1
	case len(b.Values) == 2 && v == b.Values[0]:
		return 1 - b.T
	case len(b.Values) == 2 && v == b.Values[1]:
		return b.T
	}
	return 0
}

// Bracket selects the endpoints for target among the values present on an
// axis. Values need not be sorted or distinct. A single present value or an
// exact match collapses the bracket to that value. Otherwise the two values
// closest to target by absolute distance are chosen, so out-of-range targets
// clamp to the two nearest edge values. Equal distances favour the lower
// value, even when the higher one would straddle target: for {4, 4.5, 6} and
// target 5 the pair is [4, 4.5] with T = 2, an extrapolation.
func Bracket(values []float64, target float64) Bracketing {
	sorted := unique(values)
	switch len(sorted) {
	case 0:
		return Bracketing{}
	case 1:
		return Bracketing{Values: sorted}
	}
	if i := sort.SearchFloat64s(sorted, target); i < len(sorted) && sorted[i] == target {
		return Bracketing{Values: []float64{target}}
	}

	byDistance := append([]float64(nil), sorted...)
	sort.SliceStable(byDistance, func(a, b int) bool {
		return math.Abs(byDistance[a]-target) < math.Abs(byDistance[b]-target)
	})
	lo, hi := byDistance[0], byDistance[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	return Bracketing{
		Values: []float64{lo, hi},
		T:      (target - lo) / (hi - lo),
	}
}

func unique(values []float64) []float64 {
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	n := 0
	for i, v := range out {
		if i > 0 && v == out[n-1] {
			continue
		}
		out[n] = v
		n++
	}
	return out[:n]
}
