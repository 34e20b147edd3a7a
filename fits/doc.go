// Package fits adapts github.com/astrogo/fitsio to the shapes the PHOENIX
// grids use: 1-D primary images holding a spectrum or a wavelength axis,
// and binary tables whose columns are read by name.
package fits
