package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/viant/phoenixgrid/internal/e"
	"github.com/viant/phoenixgrid/spectrum"
)

const spectraSchema = `
CREATE TABLE IF NOT EXISTS spectra (
    key             TEXT PRIMARY KEY,
    wavelength      BLOB,
    flux            BLOB,
    wavelength_unit TEXT NOT NULL,
    flux_unit       TEXT NOT NULL,
    stored_at       TEXT NOT NULL
);
`

// EnsureSchema creates the spectra table if it does not already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(spectraSchema)
	return err
}

// SQLite is a Cache backed by the spectra table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a SQLite cache and ensures its schema.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if db == nil {
		return nil, fmt.Errorf("cache: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return &SQLite{db: db}, nil
}

// Get implements Cache.
func (c *SQLite) Get(ctx context.Context, key string) (*spectrum.Spectrum, bool, error) {
	var wave, flux []byte
	var waveUnit, fluxUnit string
	err := c.db.QueryRowContext(ctx, `SELECT wavelength, flux, wavelength_unit, flux_unit FROM spectra WHERE key = ?`, key).
		Scan(&wave, &flux, &waveUnit, &fluxUnit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}
	s := &spectrum.Spectrum{WavelengthUnit: spectrum.Unit(waveUnit), FluxUnit: spectrum.Unit(fluxUnit)}
	if s.Wavelength, err = DecodeFloats(wave); err != nil {
		return nil, false, err
	}
	if s.Flux, err = DecodeFloats(flux); err != nil {
		return nil, false, err
	}
	if err := s.Validate(); err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Put implements Cache.
func (c *SQLite) Put(ctx context.Context, key string, s *spectrum.Spectrum) error {
	if err := s.Validate(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, `INSERT INTO spectra(key, wavelength, flux, wavelength_unit, flux_unit, stored_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET wavelength = excluded.wavelength, flux = excluded.flux,
			wavelength_unit = excluded.wavelength_unit, flux_unit = excluded.flux_unit, stored_at = excluded.stored_at`,
		key, EncodeFloats(s.Wavelength), EncodeFloats(s.Flux), string(s.WavelengthUnit), string(s.FluxUnit),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

// Len returns the number of cached spectra.
func (c *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spectra`).Scan(&n); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return n, nil
}
