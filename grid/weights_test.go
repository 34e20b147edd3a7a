package grid

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumWeights(weighted []WeightedRecord) float64 {
	var s float64
	for _, w := range weighted {
		s += w.Weight
	}
	return s
}

func TestWeights_TwoNodeTemperatureGrid(t *testing.T) {
	idx, err := New([]Record{
		{Teff: 5000, Logg: 4.0, Locator: "cool"},
		{Teff: 6000, Logg: 4.0, Locator: "hot"},
	})
	require.NoError(t, err)

	t.Run("midpoint", func(t *testing.T) {
		got, err := Interpolate(idx, Query{Teff: 5500, Logg: 4.0})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.InDelta(t, 0.5, got[0].Weight, 1e-12)
		assert.InDelta(t, 0.5, got[1].Weight, 1e-12)
	})

	t.Run("on node", func(t *testing.T) {
		got, err := Interpolate(idx, Query{Teff: 5000, Logg: 4.0})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 1.0, got[0].Weight)
		assert.Equal(t, "cool", got[0].Locator)
	})
}

func TestWeights_ExactNodeOnAllAxes(t *testing.T) {
	records := rectangular([]int{5000, 6000}, []float64{4.0, 4.5}, []float64{-0.5, 0.0}, []float64{0.0, 0.4})
	idx, err := New(records)
	require.NoError(t, err)

	for _, r := range records {
		q := Query{Teff: float64(r.Teff), Logg: r.Logg, FeH: r.FeH, Alpha: r.Alpha}
		got, err := Interpolate(idx, q)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, r, got[0].Record)
		assert.Equal(t, 1.0, got[0].Weight)
	}
}

func TestWeights_SumToOneInsideBoundingBox(t *testing.T) {
	teffs := []int{3000, 3500, 4200, 5000, 6100}
	loggs := []float64{3.0, 3.5, 4.5, 5.0}
	fehs := []float64{-2.0, -1.0, -0.5, 0.0, 0.5}
	alphas := []float64{-0.2, 0.0, 0.4}
	idx, err := New(rectangular(teffs, loggs, fehs, alphas))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	for i := 0; i < 500; i++ {
		q := Query{
			Teff:  between(3000, 6100),
			Logg:  between(3.0, 5.0),
			FeH:   between(-2.0, 0.5),
			Alpha: between(-0.2, 0.4),
		}
		got, err := Interpolate(idx, q)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), 16)
		assert.InDelta(t, 1.0, sumWeights(got), 1e-9, "query %s", q)
		for _, w := range got {
			assert.Greater(t, w.Weight, 0.0)
		}
	}
}

func TestWeights_ReproducesLinearFunction(t *testing.T) {
	idx, err := New(rectangular([]int{5000, 6000}, []float64{4.0, 5.0}, []float64{-1.0, 0.0}, []float64{0.0, 0.4}))
	require.NoError(t, err)
	f := func(k Key) float64 { return 0.001*float64(k.Teff) + 2*k.Logg - 3*k.FeH + 5*k.Alpha }

	q := Query{Teff: 5250, Logg: 4.8, FeH: -0.3, Alpha: 0.1}
	got, err := Interpolate(idx, q)
	require.NoError(t, err)
	var interpolated float64
	for _, w := range got {
		interpolated += w.Weight * f(w.Key())
	}
	assert.InDelta(t, 0.001*q.Teff+2*q.Logg-3*q.FeH+5*q.Alpha, interpolated, 1e-9)
}

func TestWeights_DegenerateAxisContributesOne(t *testing.T) {
	// feh holds a single value, so any feh query leaves teff weights intact.
	idx, err := New(rectangular([]int{5000, 6000}, []float64{4.5}, []float64{-0.5}, []float64{0.0}))
	require.NoError(t, err)

	for _, feh := range []float64{-3, -0.5, 0, 1.2} {
		got, err := Interpolate(idx, Query{Teff: 5750, Logg: 2.0, FeH: feh})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.InDelta(t, 0.25, got[0].Weight, 1e-12)
		assert.InDelta(t, 0.75, got[1].Weight, 1e-12)
	}
}

func TestWeights_IncompleteCellKeepsRawProducts(t *testing.T) {
	idx, err := New([]Record{
		{Teff: 5000, Logg: 4.0},
		{Teff: 5000, Logg: 4.5},
		{Teff: 6000, Logg: 4.5},
	})
	require.NoError(t, err)

	got, err := Interpolate(idx, Query{Teff: 5500, Logg: 4.2})
	require.NoError(t, err)
	require.Len(t, got, 3)
	// the missing (6000, 4.0) node would have carried 0.3
	assert.InDelta(t, 0.3, got[0].Weight, 1e-12)
	assert.InDelta(t, 0.2, got[1].Weight, 1e-12)
	assert.InDelta(t, 0.2, got[2].Weight, 1e-12)
	assert.InDelta(t, 0.7, sumWeights(got), 1e-12)
}

func TestWeights_OutsideExtentDropsNegativeNode(t *testing.T) {
	idx, err := New(rectangular([]int{5000, 6000}, []float64{4.0}, []float64{0.0}, []float64{0.0}))
	require.NoError(t, err)

	got, err := Interpolate(idx, Query{Teff: 6500, Logg: 4.0})
	require.NoError(t, err)
	require.Len(t, got, 1)
	// t = 1.5 on teff, the 5000 K node gets -0.5 and is dropped
	assert.Equal(t, 6000, got[0].Teff)
	assert.InDelta(t, 1.5, got[0].Weight, 1e-12)
}

func TestWeights_CandidatesSpanningManyValues(t *testing.T) {
	records := rectangular([]int{4000, 5000, 6000}, []float64{4.0}, []float64{0.0}, []float64{0.0})
	got, err := Weights(records, Query{Teff: 4250, Logg: 4.0})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4000, got[0].Teff)
	assert.InDelta(t, 0.75, got[0].Weight, 1e-12)
	assert.Equal(t, 5000, got[1].Teff)
	assert.InDelta(t, 0.25, got[1].Weight, 1e-12)
}

func TestWeights_NoCandidates(t *testing.T) {
	_, err := Weights(nil, Query{})
	assert.True(t, errors.Is(err, ErrNotFound))
}
