// Package bruteforce provides an exact point index that answers kNN queries
// by scanning all points in float64 precision. It is the reference
// implementation: ties are always resolved in favour of the earliest point.
package bruteforce
