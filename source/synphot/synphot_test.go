package synphot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/phoenixgrid/fits"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/spectrum"
)

func writeTable(t *testing.T, dest string, columns ...fits.TableColumn) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fits.WriteTable(&buf, "DATA", columns))
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, buf.Bytes(), 0o644))
}

func atlas(t *testing.T) string {
	root := t.TempDir()
	writeTable(t, filepath.Join(root, CatalogFile),
		fits.TableColumn{Name: "INDEX", Strings: []string{"5000,0.0,4.5", "5000,-0.5,4.0"}},
		fits.TableColumn{Name: "FILENAME", Strings: []string{"phoenixm00/phoenixm00_5000.fits[g45]", "phoenixm05/phoenixm05_5000.fits[g40]"}},
	)
	writeTable(t, filepath.Join(root, "phoenixm00", "phoenixm00_5000.fits"),
		fits.TableColumn{Name: "WAVELENGTH", Unit: "ANGSTROM", Float64s: []float64{4000, 5000}},
		fits.TableColumn{Name: "g40", Unit: "FLAM", Float64s: []float64{9, 9}},
		fits.TableColumn{Name: "g45", Unit: "FLAM", Float64s: []float64{1, 2}},
	)
	writeTable(t, filepath.Join(root, "phoenixm05", "phoenixm05_5000.fits"),
		fits.TableColumn{Name: "WAVELENGTH", Float64s: []float64{400, 500}},
		fits.TableColumn{Name: "g40", Float64s: []float64{3, 4}},
	)
	return root
}

func TestList(t *testing.T) {
	root := atlas(t)
	src := New("synphot", root, source.FileOpener{}, nil)
	records, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, grid.Key{Teff: 5000, Logg: 4.5, FeH: 0}, records[0].Key())
	assert.Equal(t, grid.Key{Teff: 5000, Logg: 4.0, FeH: -0.5}, records[1].Key())
	assert.Equal(t, filepath.Join(root, "phoenixm00", "phoenixm00_5000.fits"), records[0].Locator)
}

func TestLoad(t *testing.T) {
	src := New("synphot", atlas(t), source.FileOpener{}, nil)
	records, err := src.List(context.Background())
	require.NoError(t, err)

	s, err := src.Load(context.Background(), records[0])
	require.NoError(t, err)
	assert.Equal(t, []float64{4000, 5000}, s.Wavelength)
	assert.Equal(t, []float64{1, 2}, s.Flux)
	assert.Equal(t, spectrum.Angstrom, s.WavelengthUnit)
	assert.Equal(t, spectrum.FluxPerAngstrom, s.FluxUnit)

	s, err = src.Load(context.Background(), records[1])
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, s.Flux)
}

func TestLoad_MissingGravityColumn(t *testing.T) {
	src := New("synphot", atlas(t), source.FileOpener{}, nil)
	records, err := src.List(context.Background())
	require.NoError(t, err)
	rec := records[1]
	rec.Logg = 5.0
	_, err = src.Load(context.Background(), rec)
	assert.Error(t, err)
}

func TestFluxColumn(t *testing.T) {
	assert.Equal(t, "g45", FluxColumn(4.5))
	assert.Equal(t, "g00", FluxColumn(0))
	assert.Equal(t, "g03", FluxColumn(0.29999999))
	assert.Equal(t, "g55", FluxColumn(5.5))
}

func TestParseIndex(t *testing.T) {
	rec, err := parseIndex("3500, -2.5, 0.5")
	require.NoError(t, err)
	assert.Equal(t, grid.Key{Teff: 3500, FeH: -2.5, Logg: 0.5}, rec.Key())

	for _, bad := range []string{"", "3500,0.0", "x,0,0", "3500,a,0"} {
		_, err := parseIndex(bad)
		assert.Error(t, err, bad)
	}
}

func TestStripSelector(t *testing.T) {
	assert.Equal(t, "a/b.fits", stripSelector("a/b.fits[g45]"))
	assert.Equal(t, "a/b.fits", stripSelector("a/b.fits"))
}
