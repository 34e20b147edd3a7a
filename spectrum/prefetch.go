package spectrum

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/phoenixgrid/grid"
	"golang.org/x/sync/errgroup"
)

// Resolved serves spectra that were loaded ahead of time.
type Resolved struct {
	mu      sync.RWMutex
	spectra map[grid.Key]*Spectrum
}

// Load returns the prefetched spectrum for rec.
func (r *Resolved) Load(_ context.Context, rec grid.Record) (*Spectrum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.spectra[rec.Key()]
	if !ok {
		return nil, fmt.Errorf("spectrum: %s was not prefetched", rec.Key())
	}
	return s, nil
}

// Len returns the number of resolved spectra.
func (r *Resolved) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.spectra)
}

// Prefetch loads the spectra of all weighted records concurrently, with at
// most limit loads in flight (unbounded when limit <= 0). The first failure
// cancels the remaining loads.
func Prefetch(ctx context.Context, weighted []grid.WeightedRecord, loader Loader, limit int) (*Resolved, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	loaded := make([]*Spectrum, len(weighted))
	for i := range weighted {
		rec := weighted[i].Record
		g.Go(func() error {
			s, err := loader.Load(gctx, rec)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrLoadFailure, rec, err)
			}
			loaded[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r := &Resolved{spectra: make(map[grid.Key]*Spectrum, len(weighted))}
	for i, w := range weighted {
		r.spectra[w.Key()] = loaded[i]
	}
	return r, nil
}
