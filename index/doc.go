// Package index defines a minimal abstraction for point indexes that are
// built once from a fixed set of grid coordinates and queried for the k
// nearest points by Euclidean distance. Implementations in this module
// include an exact brute-force scan and a VP-tree.
package index
