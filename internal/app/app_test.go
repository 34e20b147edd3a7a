package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/phoenixgrid/config"
	"github.com/viant/phoenixgrid/fits"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/source/hires"
	"github.com/viant/phoenixgrid/source/synphot"
)

func writeImage(t *testing.T, dest string, values []float64) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fits.WriteImage(&buf, values))
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, buf.Bytes(), 0o644))
}

func localGrid(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeImage(t, filepath.Join(root, hires.WaveFile), []float64{1, 2})
	writeImage(t, filepath.Join(root, "lte05000-4.50-0.0.M-HiRes.fits"), []float64{1, 1})
	writeImage(t, filepath.Join(root, "lte06000-4.50-0.0.M-HiRes.fits"), []float64{3, 3})
	return root
}

func TestNew_WithCatalogAndCache(t *testing.T) {
	root := localGrid(t)
	dir := t.TempDir()
	cfg := &config.Config{
		Catalog: &config.Catalog{Path: filepath.Join(dir, "catalog.db")},
		Cache:   &config.Cache{Kind: config.CacheSQLite, Path: filepath.Join(dir, "spectra.db")},
		Sources: []*config.Source{{Name: "local", Kind: config.KindHiRes, Path: root}},
	}
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	src, idx, err := a.Registry.Index(context.Background(), "local")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	stored, err := a.Catalog.Records(context.Background(), "local")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	s, _, err := source.Spectrum(context.Background(), src, idx, grid.Query{Teff: 5500, Logg: 4.5}, grid.Linear, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 2}, s.Flux, 1e-12)

	// The listing and the spectra now come from storage.
	require.NoError(t, os.RemoveAll(root))
	require.NoError(t, a.Close())
	b, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer b.Close()
	require.Contains(t, b.Listers, "local")
	nearest, err := b.Listers["local"].Nearest(context.Background(), grid.Query{Teff: 5600, Logg: 4.5})
	require.NoError(t, err)
	assert.Equal(t, 6000, nearest.Teff)
	src, idx, err = b.Registry.Index(context.Background(), "local")
	require.NoError(t, err)
	s, _, err = source.Spectrum(context.Background(), src, idx, grid.Query{Teff: 5500, Logg: 4.5}, grid.Linear, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 2}, s.Flux, 1e-12)
}

func TestBuild(t *testing.T) {
	testCases := []struct {
		description string
		cfg         config.Source
		expect      any
	}{
		{description: "hires http", cfg: config.Source{Name: "a", Kind: config.KindHiRes}, expect: &hires.Source{}},
		{description: "hires local", cfg: config.Source{Name: "a", Kind: config.KindHiRes, Path: "/data"}, expect: &hires.Source{}},
		{description: "hires bucket", cfg: config.Source{Name: "a", Kind: config.KindHiRes, Bucket: &config.Bucket{Endpoint: "localhost:9000", Name: "phoenix"}}, expect: &hires.Source{}},
		{description: "synphot http", cfg: config.Source{Name: "a", Kind: config.KindSynphot}, expect: &synphot.Source{}},
		{description: "synphot local", cfg: config.Source{Name: "a", Kind: config.KindSynphot, Path: "/data"}, expect: &synphot.Source{}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			src, err := Build(&tc.cfg, nil)
			require.NoError(t, err)
			assert.IsType(t, tc.expect, src)
			assert.Equal(t, "a", src.Name())
		})
	}

	_, err := Build(&config.Source{Name: "a", Kind: "btsettl"}, nil)
	assert.Error(t, err)
}

func TestNew_DefaultConfig(t *testing.T) {
	a, err := New(context.Background(), config.Default(), nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, []string{"hires", "synphot"}, a.Registry.Names())
	assert.Empty(t, a.Listers)
}
