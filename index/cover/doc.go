// Package cover provides a vantage-point tree for Euclidean kNN queries over
// larger grids. Distances are computed in float32 through viant/vec, so it is
// meant for ranked listings rather than exact tie-sensitive lookups.
package cover
