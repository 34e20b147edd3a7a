package spectrum

import (
	"fmt"
	"sort"
)

// Resample linearly interpolates (xp, fp) at each x. Points outside
// [xp[0], xp[len-1]] evaluate to 0. xp must be non-decreasing.
func Resample(x, xp, fp []float64) ([]float64, error) {
	if len(xp) != len(fp) {
		return nil, fmt.Errorf("%w: %d sample positions vs %d values", ErrMalformed, len(xp), len(fp))
	}
	if err := checkOrdered(xp); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	if len(xp) == 0 {
		return out, nil
	}
	lo, hi := xp[0], xp[len(xp)-1]
	for i, v := range x {
		if !(v >= lo && v <= hi) {
			continue
		}
		j := sort.SearchFloat64s(xp, v)
		if xp[j] == v {
			out[i] = fp[j]
			continue
		}
		x0, x1 := xp[j-1], xp[j]
		t := (v - x0) / (x1 - x0)
		out[i] = fp[j-1] + t*(fp[j]-fp[j-1])
	}
	return out, nil
}

func checkOrdered(values []float64) error {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return fmt.Errorf("%w: wavelength axis decreases at sample %d", ErrMalformed, i)
		}
	}
	return nil
}
