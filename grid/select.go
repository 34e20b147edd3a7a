package grid

import "fmt"

// NearestRecords narrows the grid to the interpolation cell around q.
//
// Axes are bracketed in the fixed order teff, logg, feh, alpha. The values
// considered on each axis come from the records that survived the previous
// axes, so brackets follow the conditional rather than the global marginal.
// The result holds between 1 and 16 records in index order.
func NearestRecords(idx *Index, q Query) ([]Record, error) {
	if idx == nil || idx.Len() == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrNotFound)
	}
	candidates := idx.Records()
	for _, a := range Axes {
		b := Bracket(distinct(candidates, a), q.Value(a))
		candidates = restrict(candidates, a, b)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no records around %s", ErrNotFound, q)
	}
	return candidates, nil
}

// restrict keeps the records whose coordinate on a is one of b's endpoints.
func restrict(records []Record, a Axis, b Bracketing) []Record {
	out := records[:0:0]
	for _, r := range records {
		if b.Contains(r.Value(a)) {
			out = append(out, r)
		}
	}
	return out
}
