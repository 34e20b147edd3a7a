package grid

import (
	"fmt"
	"math"
	"sort"

	idxapi "github.com/viant/phoenixgrid/index"
	"github.com/viant/phoenixgrid/index/bruteforce"
	"github.com/viant/phoenixgrid/index/cover"
)

// autoCoverMinRecords is the grid size from which Neighbors switches from a
// linear scan to the VP-tree.
const autoCoverMinRecords = 2048

// Index is a read-only collection of grid records. It preserves input order,
// exposes the distinct values present on each axis and resolves full keys to
// locators. An Index is safe for concurrent use once built.
type Index struct {
	records []Record
	byKey   map[Key]int
	axes    [len(Axes)][]float64
	exact   *bruteforce.Index
	ranked  idxapi.Index
}

// New builds an index over records. It fails with ErrDuplicateKey when two
// records share a key and rejects NaN coordinates.
func New(records []Record) (*Index, error) {
	idx := &Index{
		records: append([]Record(nil), records...),
		byKey:   make(map[Key]int, len(records)),
	}
	points := make([][]float64, len(records))
	for i, r := range idx.records {
		k := r.Key()
		for _, a := range Axes {
			if math.IsNaN(k.Value(a)) {
				return nil, fmt.Errorf("grid: record %d has NaN %s", i, a)
			}
		}
		if prev, ok := idx.byKey[k]; ok {
			return nil, fmt.Errorf("%w: %s (records %d and %d)", ErrDuplicateKey, k, prev, i)
		}
		idx.byKey[k] = i
		points[i] = k.vector()
	}
	for _, a := range Axes {
		idx.axes[a] = distinct(idx.records, a)
	}

	idx.exact = &bruteforce.Index{}
	if err := idx.exact.Build(points); err != nil {
		return nil, err
	}
	idx.ranked = idx.exact
	if len(points) >= autoCoverMinRecords {
		tree := &cover.Index{}
		if err := tree.Build(points); err != nil {
			return nil, err
		}
		idx.ranked = tree
	}
	return idx, nil
}

// Len returns the number of records.
func (x *Index) Len() int { return len(x.records) }

// Records returns a copy of the records in input order.
func (x *Index) Records() []Record {
	return append([]Record(nil), x.records...)
}

// AxisValues returns the sorted distinct values present on an axis across
// the whole grid. It is not conditioned on the other axes.
func (x *Index) AxisValues(a Axis) []float64 {
	if a < Teff || a > Alpha {
		return nil
	}
	return append([]float64(nil), x.axes[a]...)
}

// LocatorOf resolves a full key to its locator.
func (x *Index) LocatorOf(k Key) (string, error) {
	i, ok := x.byKey[k]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	return x.records[i].Locator, nil
}

// Lookup returns the record stored under k.
func (x *Index) Lookup(k Key) (Record, bool) {
	i, ok := x.byKey[k]
	if !ok {
		return Record{}, false
	}
	return x.records[i], true
}

// Neighbor is a record ranked by its raw parameter-space distance to a query.
type Neighbor struct {
	Record
	Distance float64
}

// Neighbors returns up to k records ordered by increasing raw Euclidean
// distance to q; k <= 0 ranks the whole grid. Large grids are served by a
// VP-tree, so distances there carry float32 precision.
func (x *Index) Neighbors(q Query, k int) ([]Neighbor, error) {
	if x.Len() == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrNotFound)
	}
	positions, distances, err := x.ranked.Query(q.vector(), k)
	if err != nil {
		return nil, err
	}
	out := make([]Neighbor, len(positions))
	for i, p := range positions {
		out[i] = Neighbor{Record: x.records[p], Distance: distances[i]}
	}
	return out, nil
}

// distinct returns the sorted distinct values of records on axis a.
func distinct(records []Record, a Axis) []float64 {
	seen := make(map[float64]struct{}, len(records))
	values := make([]float64, 0, len(records))
	for _, r := range records {
		v := r.Value(a)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Float64s(values)
	return values
}
