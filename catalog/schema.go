package catalog

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS grid_records (
    source  TEXT NOT NULL,
    seq     INTEGER NOT NULL,
    teff    INTEGER NOT NULL,
    logg    REAL NOT NULL,
    feh     REAL NOT NULL,
    alpha   REAL NOT NULL,
    locator TEXT NOT NULL,
    PRIMARY KEY (source, seq)
);

CREATE TABLE IF NOT EXISTS grid_listings (
    source       TEXT PRIMARY KEY,
    listed_at    TEXT NOT NULL,
    record_count INTEGER NOT NULL
);
`

// EnsureSchema creates the catalogue tables if they do not already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
