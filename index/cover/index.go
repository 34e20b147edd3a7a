package cover

import (
	"container/heap"
	"errors"
	"math"
	"sort"

	"github.com/viant/vec/search"
)

// pruneSlack absorbs float32 rounding in the triangle-inequality checks.
const pruneSlack = 1e-3

// Index implements a Euclidean kNN index using a VP-tree to prune search.
type Index struct {
	vecs [][]float32
	dim  int
	root *node
}

type node struct {
	idx   int // position of the vantage point
	thr   float64
	left  *node
	right *node
}

// Build constructs the VP-tree.
func (i *Index) Build(points [][]float64) error {
	i.vecs = make([][]float32, len(points))
	if len(points) == 0 {
		i.dim, i.root = 0, nil
		return nil
	}
	i.dim = len(points[0])
	for j, p := range points {
		if len(p) != i.dim {
			return errors.New("cover: inconsistent dims")
		}
		v := make([]float32, len(p))
		for k := range p {
			v[k] = float32(p[k])
		}
		i.vecs[j] = v
	}
	idxs := make([]int, len(points))
	for k := range idxs {
		idxs[k] = k
	}
	i.root = i.buildVP(idxs)
	return nil
}

func (i *Index) buildVP(idxs []int) *node {
	if len(idxs) == 0 {
		return nil
	}
	// pick last as vantage point to avoid extra randomness
	vp := idxs[len(idxs)-1]
	idxs = idxs[:len(idxs)-1]
	if len(idxs) == 0 {
		return &node{idx: vp}
	}
	dists := make([]float64, len(idxs))
	for k, j := range idxs {
		dists[k] = i.distance(i.vecs[vp], i.vecs[j])
	}
	mid := len(dists) / 2
	order := make([]int, len(idxs))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })
	thr := dists[order[mid]]
	leftIdxs := make([]int, 0, mid+1)
	rightIdxs := make([]int, 0, len(idxs)-(mid+1))
	for rank, k := range order {
		if rank <= mid {
			leftIdxs = append(leftIdxs, idxs[k])
		} else {
			rightIdxs = append(rightIdxs, idxs[k])
		}
	}
	return &node{
		idx:   vp,
		thr:   thr,
		left:  i.buildVP(leftIdxs),
		right: i.buildVP(rightIdxs),
	}
}

// Query returns up to k positions ordered by increasing distance.
func (i *Index) Query(query []float64, k int) ([]int, []float64, error) {
	if i.dim == 0 || len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, errors.New("cover: query dim mismatch")
	}
	if k <= 0 || k > len(i.vecs) {
		k = len(i.vecs)
	}
	q := make([]float32, len(query))
	for j := range query {
		q[j] = float32(query[j])
	}

	best := make(neighbors, 0, k)
	tau := func() float64 {
		if len(best) < k {
			return math.Inf(1)
		}
		return best[0].dist
	}
	var search func(n *node)
	search = func(n *node) {
		if n == nil {
			return
		}
		d := i.distance(q, i.vecs[n.idx])
		switch {
		case len(best) < k:
			heap.Push(&best, neighbor{idx: n.idx, dist: d})
		case d < best[0].dist || (d == best[0].dist && n.idx < best[0].idx):
			best[0] = neighbor{idx: n.idx, dist: d}
			heap.Fix(&best, 0)
		}
		// prune using triangle inequality
		if d < n.thr {
			if d-tau() <= n.thr+pruneSlack {
				search(n.left)
			}
			if d+tau() >= n.thr-pruneSlack {
				search(n.right)
			}
		} else {
			if d+tau() >= n.thr-pruneSlack {
				search(n.right)
			}
			if d-tau() <= n.thr+pruneSlack {
				search(n.left)
			}
		}
	}
	search(i.root)

	sort.Slice(best, func(a, b int) bool {
		if best[a].dist != best[b].dist {
			return best[a].dist < best[b].dist
		}
		return best[a].idx < best[b].idx
	})
	positions := make([]int, len(best))
	distances := make([]float64, len(best))
	for n := range best {
		positions[n] = best[n].idx
		distances[n] = best[n].dist
	}
	return positions, distances, nil
}

func (i *Index) distance(a, b []float32) float64 {
	return float64(search.Float32s(a).EuclideanDistance(b))
}

type neighbor struct {
	idx  int
	dist float64
}

// neighbors implements heap.Interface as a max-heap on distance so the
// current worst candidate sits at the root.
type neighbors []neighbor

func (h neighbors) Len() int { return len(h) }
func (h neighbors) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist > h[j].dist
	}
	return h[i].idx > h[j].idx
}
func (h neighbors) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *neighbors) Push(x interface{}) {
	*h = append(*h, x.(neighbor))
}

func (h *neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
