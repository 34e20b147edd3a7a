package cache

import (
	"context"
	"log/slog"

	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/spectrum"
)

// CachingLoader serves spectra from a Cache and falls back to the wrapped
// loader on a miss. Cache failures are logged and never fail a load.
type CachingLoader struct {
	next   spectrum.Loader
	cache  Cache
	source string
	logger *slog.Logger
}

// Loader wraps next so that spectra of source are cached in c. logger may
// be nil.
func Loader(next spectrum.Loader, c Cache, source string, logger *slog.Logger) *CachingLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachingLoader{next: next, cache: c, source: source, logger: logger}
}

// Load implements spectrum.Loader.
func (l *CachingLoader) Load(ctx context.Context, rec grid.Record) (*spectrum.Spectrum, error) {
	key := Key(l.source, rec)
	s, ok, err := l.cache.Get(ctx, key)
	switch {
	case err != nil:
		l.logger.Warn("spectrum cache read failed", "key", key, "error", err)
	case ok:
		l.logger.Debug("spectrum cache hit", "key", key)
		return s, nil
	default:
		l.logger.Debug("spectrum cache miss", "key", key)
	}

	s, err = l.next.Load(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Put(ctx, key, s); err != nil {
		l.logger.Warn("spectrum cache write failed", "key", key, "error", err)
	}
	return s, nil
}
