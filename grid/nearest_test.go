package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestSingle_ManualMinimum(t *testing.T) {
	records := []Record{
		{Teff: 5000, Logg: 4.5, FeH: 0.0, Locator: "a"},
		{Teff: 5100, Logg: 3.0, FeH: -1.0, Locator: "b"},
		{Teff: 4950, Logg: 1.0, FeH: 0.5, Alpha: 0.4, Locator: "c"},
	}
	idx, err := New(records)
	require.NoError(t, err)
	q := Query{Teff: 5040, Logg: 4.4, FeH: -0.1}

	dist := func(r Record) float64 {
		return math.Sqrt(math.Pow(float64(r.Teff)-q.Teff, 2) + math.Pow(r.Logg-q.Logg, 2) +
			math.Pow(r.FeH-q.FeH, 2) + math.Pow(r.Alpha-q.Alpha, 2))
	}
	want := records[0]
	for _, r := range records[1:] {
		if dist(r) < dist(want) {
			want = r
		}
	}

	got, err := NearestSingle(idx, q)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "a", got.Locator)
}

func TestNearestSingle_TemperatureDominates(t *testing.T) {
	// Raw units: a 2 dex gravity offset costs less than 20 K of temperature.
	idx, err := New([]Record{
		{Teff: 5000, Logg: 2.0, Locator: "same-gravity-far-teff"},
		{Teff: 5100, Logg: 4.0, Locator: "near-teff"},
	})
	require.NoError(t, err)

	got, err := NearestSingle(idx, Query{Teff: 5060, Logg: 2.0})
	require.NoError(t, err)
	assert.Equal(t, "near-teff", got.Locator)
}

func TestNearestSingle_TiesKeepFirst(t *testing.T) {
	idx, err := New([]Record{
		{Teff: 6000, Locator: "second-by-value"},
		{Teff: 5000, Locator: "first-by-value"},
	})
	require.NoError(t, err)

	got, err := NearestSingle(idx, Query{Teff: 5500})
	require.NoError(t, err)
	assert.Equal(t, "second-by-value", got.Locator)
}

func TestNearestSingle_Empty(t *testing.T) {
	idx, err := New(nil)
	require.NoError(t, err)
	_, err = NearestSingle(idx, Query{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSelect(t *testing.T) {
	idx, err := New([]Record{{Teff: 5000, Logg: 4.0}, {Teff: 6000, Logg: 4.0}})
	require.NoError(t, err)

	nearest, err := Select(idx, Query{Teff: 5400, Logg: 4.0}, Nearest)
	require.NoError(t, err)
	require.Len(t, nearest, 1)
	assert.Equal(t, 5000, nearest[0].Teff)
	assert.Equal(t, 1.0, nearest[0].Weight)

	linear, err := Select(idx, Query{Teff: 5400, Logg: 4.0}, Linear)
	require.NoError(t, err)
	require.Len(t, linear, 2)
	assert.InDelta(t, 0.6, linear[0].Weight, 1e-12)
	assert.InDelta(t, 0.4, linear[1].Weight, 1e-12)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Nearest")
	require.NoError(t, err)
	assert.Equal(t, Nearest, m)
	assert.Equal(t, "nearest", m.String())

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Linear, m)

	_, err = ParseMode("cubic")
	assert.Error(t, err)
}
