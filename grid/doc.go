// Package grid locates interpolation nodes in an irregular PHOENIX model
// grid indexed by effective temperature, surface gravity, metallicity and
// alpha-element enhancement.
//
// The package provides:
//   - Record, Key and Query value types
//   - Index: a read-only collection of records with per-axis value sets
//   - Bracket: per-axis selection of the one or two nearest grid values
//   - NearestRecords: axis-by-axis narrowing to the interpolation cell
//   - Weights: multilinear interpolation weights for the cell nodes
//   - NearestSingle: the closest record in raw parameter space
package grid
