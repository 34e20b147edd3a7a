package grid

import "fmt"

// WeightedRecord is a grid record with its interpolation weight.
type WeightedRecord struct {
	Record
	Weight float64
}

// Weights assigns multilinear interpolation weights to candidates for q.
//
// The fraction on each axis is recomputed from the distinct values present
// among the candidates, so it stays consistent with whichever nodes survived
// NearestRecords. Candidates spanning more than two values on an axis are
// bracketed first. A node's weight is the product of its axis factors: 1 on
// a degenerate axis, 1-t at the lower endpoint and t at the upper one.
// Non-positive weights are dropped and the rest are returned as computed, so
// they sum to one only for queries inside a complete cell.
func Weights(candidates []Record, q Query) ([]WeightedRecord, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates for %s", ErrNotFound, q)
	}
	survivors := candidates
	for _, a := range Axes {
		survivors = restrict(survivors, a, Bracket(distinct(survivors, a), q.Value(a)))
	}

	var brackets [len(Axes)]Bracketing
	for _, a := range Axes {
		brackets[a] = Bracket(distinct(survivors, a), q.Value(a))
	}

	out := make([]WeightedRecord, 0, len(survivors))
	for _, r := range survivors {
		w := 1.0
		for _, a := range Axes {
			w *= brackets[a].Factor(r.Value(a))
		}
		if !(w > 0) {
			continue
		}
		out = append(out, WeightedRecord{Record: r, Weight: w})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no node carries positive weight for %s", ErrNotFound, q)
	}
	return out, nil
}

// Interpolate returns the weighted interpolation nodes for q.
func Interpolate(idx *Index, q Query) ([]WeightedRecord, error) {
	candidates, err := NearestRecords(idx, q)
	if err != nil {
		return nil, err
	}
	return Weights(candidates, q)
}
