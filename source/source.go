package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/spectrum"
)

// Lister enumerates the records of a grid.
type Lister interface {
	List(ctx context.Context) ([]grid.Record, error)
}

// Source is a named grid: it lists its records, loads their spectra and
// exposes the raw file behind a record.
type Source interface {
	Lister
	spectrum.Loader
	Name() string
	Open(ctx context.Context, rec grid.Record) (io.ReadCloser, error)
}

// Opener resolves a locator to a readable stream.
type Opener interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, locator string) (io.ReadCloser, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	return f(ctx, locator)
}

// FileOpener opens locators on the local filesystem. Relative locators are
// resolved against Root.
type FileOpener struct {
	Root string
}

// Open implements Opener.
func (o FileOpener) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	p := filepath.FromSlash(locator)
	if o.Root != "" && !filepath.IsAbs(p) {
		p = filepath.Join(o.Root, p)
	}
	return os.Open(p)
}

// Join resolves name against root. URL roots use URL reference resolution,
// so a root without a trailing slash loses its last segment as a browser
// would; other roots are joined as slash-separated paths.
func Join(root, name string) string {
	if root == "" {
		return name
	}
	if u, err := url.Parse(root); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		ref, err := url.Parse(name)
		if err != nil {
			return strings.TrimSuffix(root, "/") + "/" + name
		}
		return u.ResolveReference(ref).String()
	}
	return path.Join(root, name)
}

// EnsureDir appends a trailing slash to URL roots so Join descends into them.
func EnsureDir(root string) string {
	if root == "" || strings.HasSuffix(root, "/") {
		return root
	}
	return root + "/"
}

type listerOverride struct {
	Source
	lister Lister
}

func (s listerOverride) List(ctx context.Context) ([]grid.Record, error) {
	return s.lister.List(ctx)
}

// WithLister returns src with its listing served by lister, typically a
// catalog.CachedLister wrapping src itself.
func WithLister(src Source, lister Lister) Source {
	return listerOverride{Source: src, lister: lister}
}

type loaderOverride struct {
	Source
	loader spectrum.Loader
}

func (s loaderOverride) Load(ctx context.Context, rec grid.Record) (*spectrum.Spectrum, error) {
	return s.loader.Load(ctx, rec)
}

// WithLoader returns src with its spectra loaded by loader, typically a
// cache.CachingLoader wrapping src itself.
func WithLoader(src Source, loader spectrum.Loader) Source {
	return loaderOverride{Source: src, loader: loader}
}

// Index lists src and builds a grid index over its records.
func Index(ctx context.Context, src Source) (*grid.Index, error) {
	records, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", src.Name(), err)
	}
	idx, err := grid.New(records)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", src.Name(), err)
	}
	return idx, nil
}
