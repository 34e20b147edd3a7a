package bruteforce

import (
	"math"
	"testing"
)

func TestIndex_QueryOrder(t *testing.T) {
	idx := &Index{}
	if err := idx.Build([][]float64{{0, 0}, {3, 4}, {1, 0}, {0, 1}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	positions, distances, err := idx.Query([]float64{0, 0}, 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	want := []int{0, 2, 3}
	if len(positions) != len(want) {
		t.Fatalf("Query returned %d positions, want %d", len(positions), len(want))
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("positions = %v, want %v", positions, want)
		}
	}
	if distances[0] != 0 || distances[1] != 1 || distances[2] != 1 {
		t.Fatalf("distances = %v, want [0 1 1]", distances)
	}

	all, _, err := idx.Query([]float64{0, 0}, 0)
	if err != nil {
		t.Fatalf("Query(k=0) failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Query(k=0) returned %d positions, want 4", len(all))
	}
}

func TestIndex_NearestKeepsFirstOnTie(t *testing.T) {
	idx := &Index{}
	if err := idx.Build([][]float64{{10}, {0}, {20}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	pos, dist, err := idx.Nearest([]float64{5})
	if err != nil {
		t.Fatalf("Nearest failed: %v", err)
	}
	if pos != 0 || dist != 5 {
		t.Fatalf("Nearest = (%d, %v), want (0, 5)", pos, dist)
	}
}

func TestIndex_Errors(t *testing.T) {
	idx := &Index{}
	if err := idx.Build([][]float64{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error for inconsistent dims")
	}
	if err := idx.Build([][]float64{{1, 2}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, _, err := idx.Query([]float64{1}, 1); err == nil {
		t.Fatalf("expected error for query dim mismatch")
	}
	empty := &Index{}
	if pos, _, err := empty.Nearest([]float64{1}); err != nil || pos != -1 {
		t.Fatalf("empty Nearest = %d, %v; want -1, nil", pos, err)
	}
}

func TestDistance(t *testing.T) {
	if d := Distance([]float64{5000, 4.5, 0, 0}, []float64{5003, 0.5, 0, 0}); d != 5 {
		t.Fatalf("Distance = %v, want 5", d)
	}
	if d := Distance(nil, nil); d != 0 || math.IsNaN(d) {
		t.Fatalf("Distance(nil, nil) = %v, want 0", d)
	}
}
