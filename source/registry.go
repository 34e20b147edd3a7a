package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/phoenixgrid/grid"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrDuplicateSource is returned when a name is registered twice.
	ErrDuplicateSource = errors.New("source: already registered")
	// ErrUnknownSource is returned when a name is not registered.
	ErrUnknownSource = errors.New("source: not registered")
)

// Registry maps names to sources. The zero value is not usable; use
// NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	indexes map[string]*grid.Index
	group   singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source), indexes: make(map[string]*grid.Index)}
}

// Register adds src under name.
func (r *Registry) Register(name string, src Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSource, name)
	}
	r.sources[name] = src
	return nil
}

// Find returns the source registered under name.
func (r *Registry) Find(name string) (Source, error) {
	r.mu.RLock()
	src, ok := r.sources[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available sources: %s)", ErrUnknownSource, name, strings.Join(r.Names(), ", "))
	}
	return src, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Index returns the source registered under name with its grid index. The
// index is built on first use and kept; concurrent first calls share one
// listing. Failures are not kept.
func (r *Registry) Index(ctx context.Context, name string) (Source, *grid.Index, error) {
	src, err := r.Find(name)
	if err != nil {
		return nil, nil, err
	}
	r.mu.RLock()
	idx, ok := r.indexes[name]
	r.mu.RUnlock()
	if ok {
		return src, idx, nil
	}
	v, err, _ := r.group.Do(name, func() (any, error) {
		idx, err := Index(ctx, src)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.indexes[name] = idx
		r.mu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return src, v.(*grid.Index), nil
}

// Forget drops the index kept for name so the next Index call lists again.
func (r *Registry) Forget(name string) {
	r.mu.Lock()
	delete(r.indexes, name)
	r.mu.Unlock()
}
