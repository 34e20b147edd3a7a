package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/viant/phoenixgrid/grid"
)

// Lister enumerates the records of a named grid.
type Lister interface {
	Name() string
	List(ctx context.Context) ([]grid.Record, error)
}

// CachedLister serves a listing from a Store while it is younger than MaxAge
// and refreshes it from the wrapped Lister otherwise.
type CachedLister struct {
	store  *Store
	next   Lister
	maxAge time.Duration
	logger *slog.Logger
}

// Cached wraps next with store. A non-positive maxAge keeps a stored
// listing forever. logger may be nil.
func Cached(store *Store, next Lister, maxAge time.Duration, logger *slog.Logger) *CachedLister {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedLister{store: store, next: next, maxAge: maxAge, logger: logger}
}

// Name returns the wrapped lister's name.
func (c *CachedLister) Name() string { return c.next.Name() }

// List returns the stored listing when fresh, otherwise lists and stores.
func (c *CachedLister) List(ctx context.Context) ([]grid.Record, error) {
	records, refreshed, err := c.ensure(ctx)
	if err != nil || refreshed {
		return records, err
	}
	name := c.next.Name()
	if records, err = c.store.Records(ctx, name); err != nil {
		return nil, err
	}
	c.logger.Debug("catalog hit", "source", name, "records", len(records))
	return records, nil
}

// Nearest returns the stored record closest to q, refreshing a stale listing
// first. Only the winning row is read back.
func (c *CachedLister) Nearest(ctx context.Context, q grid.Query) (grid.Record, error) {
	if _, _, err := c.ensure(ctx); err != nil {
		return grid.Record{}, err
	}
	return c.store.Nearest(ctx, c.next.Name(), q)
}

// ensure relists into the store unless a fresh listing is already there.
// The records are returned only when a refresh happened.
func (c *CachedLister) ensure(ctx context.Context) ([]grid.Record, bool, error) {
	name := c.next.Name()
	listedAt, ok, err := c.store.ListedAt(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if ok && (c.maxAge <= 0 || c.store.now().Sub(listedAt) < c.maxAge) {
		return nil, false, nil
	}
	records, err := c.next.List(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := c.store.Put(ctx, name, records); err != nil {
		return nil, false, err
	}
	c.logger.Info("catalog refreshed", "source", name, "records", len(records))
	return records, true, nil
}
