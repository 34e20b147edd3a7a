package index

// Index defines a kNN index over fixed-dimension points. Points are
// addressed by their position in the slice passed to Build, which lets
// callers keep their own records alongside the index without copying ids.
type Index interface {
	// Build constructs the index from the given points. All points must have
	// the same dimension; an empty slice yields an empty index.
	Build(points [][]float64) error

	// Query runs a kNN search and returns up to k positions ordered by
	// increasing Euclidean distance, together with the distances. When k <= 0
	// every indexed point is returned. Equal distances are ordered by
	// position.
	Query(query []float64, k int) (positions []int, distances []float64, err error)
}
