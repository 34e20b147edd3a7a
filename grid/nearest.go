package grid

import (
	"fmt"
	"strings"
)

// NearestSingle returns the record closest to q by Euclidean distance over
// the raw (teff, logg, feh, alpha) coordinates. The axes are not rescaled,
// so teff dominates the distance on typical grids. Ties resolve to the
// record that comes first in the index.
func NearestSingle(idx *Index, q Query) (Record, error) {
	if idx == nil || idx.Len() == 0 {
		return Record{}, fmt.Errorf("%w: empty grid", ErrNotFound)
	}
	pos, _, err := idx.exact.Nearest(q.vector())
	if err != nil {
		return Record{}, err
	}
	if pos < 0 {
		return Record{}, fmt.Errorf("%w: no record near %s", ErrNotFound, q)
	}
	return idx.records[pos], nil
}

// Mode selects how a query is resolved against the grid.
type Mode int

const (
	// Linear interpolates between the nodes of the surrounding cell.
	Linear Mode = iota
	// Nearest uses the single closest node.
	Nearest
)

func (m Mode) String() string {
	if m == Nearest {
		return "nearest"
	}
	return "linear"
}

// ParseMode resolves a mode by name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "linear":
		return Linear, nil
	case "nearest":
		return Nearest, nil
	}
	return Linear, fmt.Errorf("grid: unknown mode %q", name)
}

// Select resolves q using mode. Nearest mode yields one record with weight 1.
func Select(idx *Index, q Query, mode Mode) ([]WeightedRecord, error) {
	if mode == Nearest {
		r, err := NearestSingle(idx, q)
		if err != nil {
			return nil, err
		}
		return []WeightedRecord{{Record: r, Weight: 1}}, nil
	}
	return Interpolate(idx, q)
}
