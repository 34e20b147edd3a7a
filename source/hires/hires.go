// Package hires serves the PHOENIX HiRes FITS grid: one primary-image flux
// file per node, named after its parameters, plus a shared wavelength file.
package hires

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/phoenixgrid/fits"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/source/listing"
	"github.com/viant/phoenixgrid/source/objstore"
	"github.com/viant/phoenixgrid/spectrum"
)

const (
	DefaultBaseURL = "https://phoenix.astro.physik.uni-goettingen.de/data/v2.0/HiResFITS/"
	DefaultModel   = "PHOENIX-ACES-AGSS-COND-2011"
	// WaveFile holds the wavelength axis shared by every flux file.
	WaveFile = "WAVE_PHOENIX-ACES-AGSS-COND-2011.fits"
)

// FileLister enumerates candidate file locators.
type FileLister func(ctx context.Context) ([]string, error)

// Options configure a Source.
type Options struct {
	Name        string
	Opener      source.Opener
	Files       FileLister
	WaveLocator string
	Logger      *slog.Logger
}

// Source is the HiRes grid.
type Source struct {
	name        string
	opener      source.Opener
	files       FileLister
	waveLocator string
	logger      *slog.Logger

	mu   sync.Mutex
	wave []float64
}

// New builds a Source from explicit collaborators.
func New(opts Options) *Source {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{name: opts.Name, opener: opts.Opener, files: opts.Files, waveLocator: opts.WaveLocator, logger: logger}
}

// Name implements source.Source.
func (s *Source) Name() string { return s.name }

// List returns one record per flux file whose name encodes a grid node.
func (s *Source) List(ctx context.Context) ([]grid.Record, error) {
	files, err := s.files(ctx)
	if err != nil {
		return nil, err
	}
	var records []grid.Record
	skipped := 0
	for _, f := range files {
		rec, ok := source.ParseFilename(f)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	s.logger.Debug("hires listing", "source", s.name, "records", len(records), "skipped", skipped)
	return records, nil
}

// Open implements source.Source.
func (s *Source) Open(ctx context.Context, rec grid.Record) (io.ReadCloser, error) {
	return s.opener.Open(ctx, rec.Locator)
}

// Load implements spectrum.Loader.
func (s *Source) Load(ctx context.Context, rec grid.Record) (*spectrum.Spectrum, error) {
	wave, err := s.wavelength(ctx)
	if err != nil {
		return nil, err
	}
	img, err := s.primary(ctx, rec.Locator)
	if err != nil {
		return nil, err
	}
	fluxUnit := spectrum.ParseUnit(img.Unit)
	if !fluxUnit.Known() {
		fluxUnit = spectrum.FluxPerCentimeter
	}
	return &spectrum.Spectrum{
		Wavelength:     wave,
		Flux:           img.Values,
		WavelengthUnit: spectrum.Angstrom,
		FluxUnit:       fluxUnit,
	}, nil
}

// wavelength loads the shared wavelength axis once. A failed load is
// retried on the next call.
func (s *Source) wavelength(ctx context.Context) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wave != nil {
		return s.wave, nil
	}
	img, err := s.primary(ctx, s.waveLocator)
	if err != nil {
		return nil, fmt.Errorf("wavelength file: %w", err)
	}
	s.wave = img.Values
	return s.wave, nil
}

func (s *Source) primary(ctx context.Context, locator string) (*fits.Image, error) {
	r, err := s.opener.Open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	img, err := fits.ReadImage(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", locator, err)
	}
	return img, nil
}

// WalkFiles lists the FITS files below root/model on an HTTP index.
func WalkFiles(walker listing.Walker, root, model string) FileLister {
	start := source.Join(source.EnsureDir(root), model+"/")
	return func(ctx context.Context) ([]string, error) {
		var out []string
		for u, err := range walker.Walk(ctx, start) {
			if err != nil {
				return nil, err
			}
			out = append(out, u)
		}
		return out, nil
	}
}

// LocalFiles lists the FITS files below a local directory.
func LocalFiles(root string) FileLister {
	return func(ctx context.Context) ([]string, error) {
		var out []string
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".fits") {
				out = append(out, p)
			}
			return nil
		})
		return out, err
	}
}

// BucketFiles lists the FITS objects of a bucket.
func BucketFiles(b *objstore.Bucket) FileLister {
	return func(ctx context.Context) ([]string, error) {
		return b.List(ctx, ".fits")
	}
}

// NewHTTP serves the grid published at baseURL, downloading through fetcher.
func NewHTTP(name, baseURL, model string, maxDepth int, fetcher interface {
	source.Opener
	listing.Fetcher
}, logger *slog.Logger) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	walker := listing.Walker{Fetcher: fetcher, MaxDepth: maxDepth, Suffix: ".fits"}
	return New(Options{
		Name:        name,
		Opener:      fetcher,
		Files:       WalkFiles(walker, baseURL, model),
		WaveLocator: source.Join(source.EnsureDir(baseURL), WaveFile),
		Logger:      logger,
	})
}

// NewLocal serves a grid mirrored below root, with WaveFile at its top.
func NewLocal(name, root string, logger *slog.Logger) *Source {
	return New(Options{
		Name:        name,
		Opener:      source.FileOpener{},
		Files:       LocalFiles(root),
		WaveLocator: filepath.Join(root, WaveFile),
		Logger:      logger,
	})
}

// NewBucket serves a grid stored in an object store bucket.
func NewBucket(name string, b *objstore.Bucket, logger *slog.Logger) *Source {
	return New(Options{
		Name:        name,
		Opener:      b,
		Files:       BucketFiles(b),
		WaveLocator: path.Clean(WaveFile),
		Logger:      logger,
	})
}
