package engine

import (
	"database/sql"
	"math"
	"testing"
)

func TestRegisterGridFunctionsAndUse(t *testing.T) {
	// Register globally before first connection so functions are available.
	if err := RegisterGridFunctions(); err != nil {
		t.Fatalf("RegisterGridFunctions failed: %v", err)
	}
	if err := RegisterGridFunctions(); err != nil {
		t.Fatalf("second RegisterGridFunctions failed: %v", err)
	}
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	var dist float64
	if err := db.QueryRow(`SELECT grid_l2(5003, 4.5, 0.0, 0.0, 5000, 0.5, 0.0, 0.0)`).Scan(&dist); err != nil {
		t.Fatalf("grid_l2 query failed: %v", err)
	}
	if math.Abs(dist-5) > 1e-9 {
		t.Fatalf("grid_l2 = %v, want 5", dist)
	}

	var null sql.NullFloat64
	if err := db.QueryRow(`SELECT grid_l2(NULL, 4.5, 0, 0, 5000, 4.5, 0, 0)`).Scan(&null); err != nil {
		t.Fatalf("grid_l2 NULL query failed: %v", err)
	}
	if null.Valid {
		t.Fatalf("grid_l2 with NULL = %v, want NULL", null.Float64)
	}

	var v float64
	if err := db.QueryRow(`SELECT grid_l2('x', 1, 0, 0, 0, 0, 0, 0)`).Scan(&v); err == nil {
		t.Fatalf("expected error for text argument, got %v", v)
	}
}
