// Package synphot serves the synphot PHOENIX atlas: a catalog table mapping
// nodes to files, each file a table of wavelength and one flux column per
// surface gravity.
package synphot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/viant/phoenixgrid/fits"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/spectrum"
)

const (
	DefaultBaseURL = "https://archive.stsci.edu/hlsps/reference-atlases/cdbs/grid/phoenix/"
	CatalogFile    = "catalog.fits"
	WavelengthName = "WAVELENGTH"
)

// Source is the synphot atlas rooted at a URL, local directory or bucket
// prefix.
type Source struct {
	name   string
	root   string
	opener source.Opener
	logger *slog.Logger
}

// New returns the atlas under root, read through opener.
func New(name, root string, opener source.Opener, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{name: name, root: source.EnsureDir(root), opener: opener, logger: logger}
}

// Name implements source.Source.
func (s *Source) Name() string { return s.name }

// List reads the catalog. Each INDEX entry reads "teff,feh,logg"; each
// FILENAME carries a "[gNN]" column selector that is stripped.
func (s *Source) List(ctx context.Context) ([]grid.Record, error) {
	table, err := s.table(ctx, source.Join(s.root, CatalogFile))
	if err != nil {
		return nil, err
	}
	index, err := table.StringColumn("INDEX")
	if err != nil {
		return nil, err
	}
	files, err := table.StringColumn("FILENAME")
	if err != nil {
		return nil, err
	}
	records := make([]grid.Record, 0, len(index))
	for i, entry := range index {
		rec, err := parseIndex(entry)
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: %w", i, err)
		}
		rec.Locator = source.Join(s.root, stripSelector(files[i]))
		records = append(records, rec)
	}
	s.logger.Debug("synphot catalog", "source", s.name, "records", len(records))
	return records, nil
}

// Open implements source.Source.
func (s *Source) Open(ctx context.Context, rec grid.Record) (io.ReadCloser, error) {
	return s.opener.Open(ctx, rec.Locator)
}

// Load implements spectrum.Loader.
func (s *Source) Load(ctx context.Context, rec grid.Record) (*spectrum.Spectrum, error) {
	table, err := s.table(ctx, rec.Locator)
	if err != nil {
		return nil, err
	}
	wave, err := table.Float64Column(WavelengthName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Locator, err)
	}
	name := FluxColumn(rec.Logg)
	flux, err := table.Float64Column(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Locator, err)
	}
	out := &spectrum.Spectrum{
		Wavelength:     wave,
		Flux:           flux,
		WavelengthUnit: spectrum.Angstrom,
		FluxUnit:       spectrum.FluxPerAngstrom,
	}
	if col, err := table.Column(WavelengthName); err == nil {
		if u := spectrum.ParseUnit(col.Unit); u.Known() {
			out.WavelengthUnit = u
		}
	}
	if col, err := table.Column(name); err == nil {
		if u := spectrum.ParseUnit(col.Unit); u.Known() {
			out.FluxUnit = u
		}
	}
	return out, nil
}

func (s *Source) table(ctx context.Context, locator string) (*fits.Table, error) {
	r, err := s.opener.Open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	table, err := fits.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", locator, err)
	}
	return table, nil
}

// FluxColumn names the flux column for a surface gravity, e.g. g45 for 4.5.
func FluxColumn(logg float64) string {
	return fmt.Sprintf("g%02d", int(math.Round(logg*10)))
}

func stripSelector(name string) string {
	if strings.HasSuffix(name, "]") {
		if i := strings.LastIndexByte(name, '['); i >= 0 {
			return name[:i]
		}
	}
	return name
}

func parseIndex(entry string) (grid.Record, error) {
	parts := strings.Split(entry, ",")
	if len(parts) != 3 {
		return grid.Record{}, fmt.Errorf("malformed index %q", entry)
	}
	teff, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return grid.Record{}, fmt.Errorf("malformed index %q: %w", entry, err)
	}
	var values [2]float64
	for i, p := range parts[1:] {
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return grid.Record{}, fmt.Errorf("malformed index %q: %w", entry, err)
		}
		values[i] = d.InexactFloat64() + 0
	}
	return grid.Record{Teff: teff, FeH: values[0], Logg: values[1]}, nil
}
