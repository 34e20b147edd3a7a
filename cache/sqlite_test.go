package cache

import (
	"context"
	"testing"

	"github.com/viant/phoenixgrid/engine"
	"github.com/viant/phoenixgrid/spectrum"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	c, err := NewSQLite(db)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	return c
}

func TestSQLite_GetPut(t *testing.T) {
	ctx := context.Background()
	c := newTestSQLite(t)

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v; want miss", ok, err)
	}

	s := &spectrum.Spectrum{Wavelength: []float64{1, 2}, Flux: []float64{3, 4}, WavelengthUnit: spectrum.Angstrom, FluxUnit: spectrum.FluxPerAngstrom}
	if err := c.Put(ctx, "k", s); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	s.Flux = []float64{5, 6}
	if err := c.Put(ctx, "k", s); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = %v, %v; want hit", ok, err)
	}
	if got.Flux[0] != 5 || got.Flux[1] != 6 || got.FluxUnit != spectrum.FluxPerAngstrom {
		t.Fatalf("Get(k) = %+v, want replaced flux", got)
	}
	n, err := c.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("Len = %d, want 1", n)
	}
}
