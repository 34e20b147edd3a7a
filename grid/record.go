package grid

import (
	"fmt"
	"strings"
)

// Axis identifies one of the four grid parameters.
type Axis int

const (
	Teff Axis = iota
	Logg
	FeH
	Alpha
)

// Axes lists every axis in evaluation order.
var Axes = [...]Axis{Teff, Logg, FeH, Alpha}

func (a Axis) String() string {
	switch a {
	case Teff:
		return "teff"
	case Logg:
		return "logg"
	case FeH:
		return "feh"
	case Alpha:
		return "alpha"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxis resolves an axis by name, case-insensitively.
func ParseAxis(name string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "teff":
		return Teff, nil
	case "logg":
		return Logg, nil
	case "feh", "fe/h", "z":
		return FeH, nil
	case "alpha", "a":
		return Alpha, nil
	}
	return 0, fmt.Errorf("grid: unknown axis %q", name)
}

// Key is the 4-tuple that uniquely identifies a grid node.
type Key struct {
	Teff  int
	Logg  float64
	FeH   float64
	Alpha float64
}

// Value returns the key's coordinate on the given axis.
func (k Key) Value(a Axis) float64 {
	switch a {
	case Teff:
		return float64(k.Teff)
	case Logg:
		return k.Logg
	case FeH:
		return k.FeH
	case Alpha:
		return k.Alpha
	}
	return 0
}

func (k Key) String() string {
	return fmt.Sprintf("teff=%d logg=%.2f feh=%+.2f alpha=%+.2f", k.Teff, k.Logg, k.FeH, k.Alpha)
}

func (k Key) vector() []float64 {
	return []float64{float64(k.Teff), k.Logg, k.FeH, k.Alpha}
}

// Record is a single grid node: its parameters plus an opaque locator (a
// path, URL or object key) that a loader understands.
type Record struct {
	Teff    int
	Logg    float64
	FeH     float64
	Alpha   float64
	Locator string
}

// Key returns the record's identifying tuple.
func (r Record) Key() Key {
	return Key{Teff: r.Teff, Logg: r.Logg, FeH: r.FeH, Alpha: r.Alpha}
}

// Value returns the record's coordinate on the given axis.
func (r Record) Value(a Axis) float64 { return r.Key().Value(a) }

func (r Record) String() string {
	if r.Locator == "" {
		return r.Key().String()
	}
	return r.Key().String() + " " + r.Locator
}

// Query is a point in parameter space. Alpha defaults to zero for grids
// without alpha enhancement.
type Query struct {
	Teff  float64
	Logg  float64
	FeH   float64
	Alpha float64
}

// Point returns a query with no alpha enhancement.
func Point(teff, logg, feh float64) Query {
	return Query{Teff: teff, Logg: logg, FeH: feh}
}

// Value returns the query coordinate on the given axis.
func (q Query) Value(a Axis) float64 {
	switch a {
	case Teff:
		return q.Teff
	case Logg:
		return q.Logg
	case FeH:
		return q.FeH
	case Alpha:
		return q.Alpha
	}
	return 0
}

func (q Query) vector() []float64 {
	return []float64{q.Teff, q.Logg, q.FeH, q.Alpha}
}

func (q Query) String() string {
	return fmt.Sprintf("teff=%g logg=%g feh=%g alpha=%g", q.Teff, q.Logg, q.FeH, q.Alpha)
}
