package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/internal/e"
)

// Store persists grid listings per source.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a Store over db and ensures the schema exists. The db
// should come from engine.Open so the grid SQL functions are registered.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Put replaces the listing of source with records, preserving their order.
func (s *Store) Put(ctx context.Context, source string, records []grid.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM grid_records WHERE source = ?`, source); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO grid_records(source, seq, teff, logg, feh, alpha, locator) VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, source, i, r.Teff, r.Logg, r.FeH, r.Alpha, r.Locator); err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("insert %s: %w", r.Key(), err))
		}
	}
	listedAt := s.now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `INSERT INTO grid_listings(source, listed_at, record_count) VALUES(?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET listed_at = excluded.listed_at, record_count = excluded.record_count`,
		source, listedAt, len(records)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if err := tx.Commit(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

// Records returns the stored listing of source in insertion order.
func (s *Store) Records(ctx context.Context, source string) ([]grid.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT teff, logg, feh, alpha, locator FROM grid_records WHERE source = ? ORDER BY seq`, source)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var out []grid.Record
	for rows.Next() {
		var r grid.Record
		if err := rows.Scan(&r.Teff, &r.Logg, &r.FeH, &r.Alpha, &r.Locator); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return out, nil
}

// ListedAt reports when source was last stored. ok is false when it never was.
func (s *Store) ListedAt(ctx context.Context, source string) (listedAt time.Time, ok bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT listed_at FROM grid_listings WHERE source = ?`, source).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, e.Wrap(whereami.WhereAmI(), err)
	}
	listedAt, err = time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, e.Wrap(whereami.WhereAmI(), err)
	}
	return listedAt, true, nil
}

// Sources returns the names of all stored listings, sorted.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source FROM grid_listings ORDER BY source`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return out, nil
}

// Nearest returns the stored record of source closest to q by raw Euclidean
// distance, the earliest listed record winning ties. It mirrors
// grid.NearestSingle without loading the listing.
func (s *Store) Nearest(ctx context.Context, source string, q grid.Query) (grid.Record, error) {
	var r grid.Record
	err := s.db.QueryRowContext(ctx, `SELECT teff, logg, feh, alpha, locator FROM grid_records
		WHERE source = ?
		ORDER BY grid_l2(teff, logg, feh, alpha, ?, ?, ?, ?), seq
		LIMIT 1`, source, q.Teff, q.Logg, q.FeH, q.Alpha).Scan(&r.Teff, &r.Logg, &r.FeH, &r.Alpha, &r.Locator)
	if errors.Is(err, sql.ErrNoRows) {
		return grid.Record{}, fmt.Errorf("%w: no records for source %q", grid.ErrNotFound, source)
	}
	if err != nil {
		return grid.Record{}, e.Wrap(whereami.WhereAmI(), err)
	}
	return r, nil
}

// Remove deletes the listing of source.
func (s *Store) Remove(ctx context.Context, source string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM grid_records WHERE source = ?`, source); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM grid_listings WHERE source = ?`, source); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return tx.Commit()
}
