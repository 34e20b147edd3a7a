package hires

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/phoenixgrid/fits"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/spectrum"
)

func writeImage(t *testing.T, dest string, values []float64, cards ...fitsio.Card) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fits.WriteImage(&buf, values, cards...))
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, buf.Bytes(), 0o644))
}

func mirror(t *testing.T) string {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, WaveFile), []float64{5000, 5001, 5002})
	model := filepath.Join(root, "Z-0.0")
	writeImage(t, filepath.Join(model, "lte05800-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits"),
		[]float64{1, 2, 3}, fitsio.Card{Name: "BUNIT", Value: "erg/s/cm^2/cm"})
	writeImage(t, filepath.Join(model, "lte05900-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits"),
		[]float64{3, 4, 5})
	require.NoError(t, os.WriteFile(filepath.Join(model, "README.txt"), []byte("x"), 0o644))
	return root
}

func TestLocal_ListSkipsWavelengthFile(t *testing.T) {
	src := NewLocal("hires", mirror(t), nil)
	records, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 5800, records[0].Teff)
	assert.Equal(t, 5900, records[1].Teff)
	assert.Equal(t, 4.5, records[0].Logg)
	assert.Equal(t, "hires", src.Name())
}

func TestLocal_Load(t *testing.T) {
	src := NewLocal("hires", mirror(t), nil)
	records, err := src.List(context.Background())
	require.NoError(t, err)

	s, err := src.Load(context.Background(), records[0])
	require.NoError(t, err)
	assert.Equal(t, []float64{5000, 5001, 5002}, s.Wavelength)
	assert.Equal(t, []float64{1, 2, 3}, s.Flux)
	assert.Equal(t, spectrum.Angstrom, s.WavelengthUnit)
	assert.Equal(t, spectrum.FluxPerCentimeter, s.FluxUnit)

	// no BUNIT falls back to the grid's native flux unit
	s, err = src.Load(context.Background(), records[1])
	require.NoError(t, err)
	assert.Equal(t, spectrum.FluxPerCentimeter, s.FluxUnit)
}

func TestLoad_WavelengthReadOnce(t *testing.T) {
	root := mirror(t)
	opens := map[string]int{}
	inner := source.FileOpener{}
	src := New(Options{
		Name: "hires",
		Opener: source.OpenerFunc(func(ctx context.Context, locator string) (io.ReadCloser, error) {
			opens[filepath.Base(locator)]++
			return inner.Open(ctx, locator)
		}),
		Files:       LocalFiles(root),
		WaveLocator: filepath.Join(root, WaveFile),
	})
	records, err := src.List(context.Background())
	require.NoError(t, err)
	for _, rec := range records {
		_, err := src.Load(context.Background(), rec)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, opens[WaveFile])
}

func TestLoad_MissingWavelengthFile(t *testing.T) {
	root := mirror(t)
	require.NoError(t, os.Remove(filepath.Join(root, WaveFile)))
	src := NewLocal("hires", root, nil)
	records, err := src.List(context.Background())
	require.NoError(t, err)

	_, err = src.Load(context.Background(), records[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpen(t *testing.T) {
	src := NewLocal("hires", mirror(t), nil)
	records, err := src.List(context.Background())
	require.NoError(t, err)

	r, err := src.Open(context.Background(), records[0])
	require.NoError(t, err)
	defer r.Close()
	img, err := fits.ReadImage(r)
	require.NoError(t, err)
	assert.Len(t, img.Values, 3)
}

func TestCombineThroughSource(t *testing.T) {
	src := NewLocal("hires", mirror(t), nil)
	idx, err := source.Index(context.Background(), src)
	require.NoError(t, err)

	weighted, err := grid.Interpolate(idx, grid.Query{Teff: 5850, Logg: 4.5})
	require.NoError(t, err)
	s, err := spectrum.Combine(context.Background(), weighted, src)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 3, 4}, s.Flux, 1e-12)
}

type pages map[string]string

func (p pages) Page(_ context.Context, u string) ([]byte, error) {
	body, ok := p[u]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(body), nil
}

func (p pages) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not used")
}

func TestWalkFiles(t *testing.T) {
	base := "https://example.org/HiResFITS"
	fetcher := pages{
		"https://example.org/HiResFITS/PHOENIX-ACES-AGSS-COND-2011/": `<a href="Z-0.0/">Z-0.0/</a>`,
		"https://example.org/HiResFITS/PHOENIX-ACES-AGSS-COND-2011/Z-0.0/": `<a href="lte05800-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits">f</a>` +
			`<a href="notes.txt">n</a>`,
	}
	src := NewHTTP("hires", base, "", 0, fetcher, nil)
	records, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://example.org/HiResFITS/PHOENIX-ACES-AGSS-COND-2011/Z-0.0/lte05800-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits", records[0].Locator)
	assert.Equal(t, "https://example.org/HiResFITS/"+WaveFile, src.waveLocator)
}
