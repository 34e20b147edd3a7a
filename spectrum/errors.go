package spectrum

import "errors"

var (
	// ErrUnitMismatch reports spectra whose units cannot be reconciled.
	ErrUnitMismatch = errors.New("spectrum: unit mismatch")
	// ErrLoadFailure wraps any error returned by a Loader.
	ErrLoadFailure = errors.New("spectrum: load failure")
	// ErrEmpty is returned when there is nothing to combine.
	ErrEmpty = errors.New("spectrum: no weighted records")
	// ErrMalformed reports inconsistent or unordered sample arrays.
	ErrMalformed = errors.New("spectrum: malformed spectrum")
)
