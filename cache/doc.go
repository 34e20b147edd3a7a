// Package cache stores decoded spectra so repeated interpolations do not
// download and decode the same grid files again. Two backends are provided:
// SQLite (a local file, or memory) and Redis (shared between processes).
// Loader wraps any spectrum.Loader with a Cache.
package cache
