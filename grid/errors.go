package grid

import "errors"

var (
	// ErrNotFound reports a lookup against an empty grid or a key that is not
	// part of the grid.
	ErrNotFound = errors.New("grid: not found")

	// ErrDuplicateKey reports two records sharing the same (teff, logg, feh,
	// alpha) tuple.
	ErrDuplicateKey = errors.New("grid: duplicate key")
)
