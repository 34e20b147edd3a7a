package bruteforce

import (
	"fmt"
	"math"
	"sort"
)

// Index is a brute-force Euclidean point index.
type Index struct {
	points [][]float64
	dim    int
}

// Build loads points and validates their dimensions.
func (i *Index) Build(points [][]float64) error {
	if len(points) == 0 {
		i.points, i.dim = nil, 0
		return nil
	}
	dim := len(points[0])
	for j := range points {
		if len(points[j]) != dim {
			return fmt.Errorf("bruteforce: inconsistent point dims %d vs %d", len(points[j]), dim)
		}
	}
	i.points = append([][]float64(nil), points...)
	i.dim = dim
	return nil
}

// Len returns the number of indexed points.
func (i *Index) Len() int { return len(i.points) }

// Query returns the k nearest positions by Euclidean distance.
func (i *Index) Query(query []float64, k int) ([]int, []float64, error) {
	if i.dim == 0 || len(i.points) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	type scored struct {
		idx  int
		dist float64
	}
	scoreds := make([]scored, 0, len(i.points))
	for j := range i.points {
		d := Distance(query, i.points[j])
		if math.IsNaN(d) {
			continue
		}
		scoreds = append(scoreds, scored{idx: j, dist: d})
	}
	sort.SliceStable(scoreds, func(a, b int) bool { return scoreds[a].dist < scoreds[b].dist })
	if k <= 0 || k > len(scoreds) {
		k = len(scoreds)
	}
	positions := make([]int, k)
	distances := make([]float64, k)
	for n := 0; n < k; n++ {
		positions[n] = scoreds[n].idx
		distances[n] = scoreds[n].dist
	}
	return positions, distances, nil
}

// Nearest returns the position of the closest point and its distance. The
// first minimum encountered wins, so ties resolve to the lowest position.
// It returns -1 for an empty index.
func (i *Index) Nearest(query []float64) (int, float64, error) {
	if i.dim == 0 || len(i.points) == 0 {
		return -1, 0, nil
	}
	if len(query) != i.dim {
		return -1, 0, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	best, bestDist := -1, math.Inf(1)
	for j := range i.points {
		if d := Distance(query, i.points[j]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist, nil
}

// Distance computes the raw Euclidean distance between two points of equal
// length. Components are not rescaled.
func Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
