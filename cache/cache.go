package cache

import (
	"context"
	"fmt"

	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/spectrum"
)

// Cache stores spectra by key.
type Cache interface {
	// Get returns the cached spectrum; ok is false on a miss.
	Get(ctx context.Context, key string) (s *spectrum.Spectrum, ok bool, err error)
	// Put stores s under key, replacing any previous value.
	Put(ctx context.Context, key string, s *spectrum.Spectrum) error
}

// Key identifies a record of a named source.
func Key(source string, rec grid.Record) string {
	return fmt.Sprintf("%s:%d:%.2f:%+.2f:%+.2f", source, rec.Teff, rec.Logg, rec.FeH+0, rec.Alpha+0)
}
