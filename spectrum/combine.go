package spectrum

import (
	"context"
	"fmt"
	"slices"

	"github.com/viant/phoenixgrid/grid"
)

// Option configures Combine.
type Option func(*options)

type options struct {
	target     []float64
	targetUnit Unit
}

// WithTarget resamples every spectrum onto axis, expressed in unit. An empty
// unit means the wavelength unit of the first loaded spectrum.
func WithTarget(axis []float64, unit Unit) Option {
	return func(o *options) {
		o.target = axis
		o.targetUnit = unit
	}
}

// Combine loads the spectrum of every weighted record, scales each flux by
// its weight and sums them on a common wavelength axis.
//
// Without a target axis, spectra that share an identical wavelength array
// are summed directly. Otherwise the shortest wavelength array (the first
// one on ties) becomes the common axis and every spectrum is linearly
// resampled onto it, with zero flux outside its own domain. Units are
// converted to those of the first spectrum (or the target unit) and
// incompatible units fail with ErrUnitMismatch. An untagged or unknown
// reference unit only matches itself.
func Combine(ctx context.Context, weighted []grid.WeightedRecord, loader Loader, opts ...Option) (*Spectrum, error) {
	if len(weighted) == 0 {
		return nil, ErrEmpty
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	spectra := make([]*Spectrum, len(weighted))
	for i, w := range weighted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := loader.Load(ctx, w.Record)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, w.Record, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", w.Record, err)
		}
		spectra[i] = s
	}

	waveUnit, fluxUnit := spectra[0].WavelengthUnit, spectra[0].FluxUnit
	if o.target != nil && o.targetUnit != "" {
		waveUnit = o.targetUnit
	}
	for i, s := range spectra {
		if err := matchReference(s.WavelengthUnit, waveUnit); err != nil {
			return nil, fmt.Errorf("%s: wavelength: %w", weighted[i].Record, err)
		}
		if err := matchReference(s.FluxUnit, fluxUnit); err != nil {
			return nil, fmt.Errorf("%s: flux: %w", weighted[i].Record, err)
		}
		converted, err := Convert(s, waveUnit, fluxUnit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", weighted[i].Record, err)
		}
		spectra[i] = converted
	}

	axis := o.target
	if axis == nil {
		if sameAxis(spectra) {
			return sum(spectra, weighted, spectra[0].Wavelength, waveUnit, fluxUnit), nil
		}
		axis = shortestAxis(spectra)
	}
	if err := checkOrdered(axis); err != nil {
		return nil, fmt.Errorf("target axis: %w", err)
	}

	out := &Spectrum{
		Wavelength:     append([]float64(nil), axis...),
		Flux:           make([]float64, len(axis)),
		WavelengthUnit: waveUnit,
		FluxUnit:       fluxUnit,
	}
	for i, s := range spectra {
		resampled, err := Resample(axis, s.Wavelength, s.Flux)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", weighted[i].Record, err)
		}
		w := weighted[i].Weight
		for j, f := range resampled {
			out.Flux[j] += w * f
		}
	}
	return out, nil
}

// matchReference rejects u when the reference cannot convert anything but
// itself.
func matchReference(u, ref Unit) error {
	if u == ref || ref.Known() {
		return nil
	}
	return fmt.Errorf("%w: %q does not match reference %q", ErrUnitMismatch, u, ref)
}

func sum(spectra []*Spectrum, weighted []grid.WeightedRecord, axis []float64, waveUnit, fluxUnit Unit) *Spectrum {
	out := &Spectrum{
		Wavelength:     append([]float64(nil), axis...),
		Flux:           make([]float64, len(axis)),
		WavelengthUnit: waveUnit,
		FluxUnit:       fluxUnit,
	}
	for i, s := range spectra {
		w := weighted[i].Weight
		for j, f := range s.Flux {
			out.Flux[j] += w * f
		}
	}
	return out
}

func sameAxis(spectra []*Spectrum) bool {
	for _, s := range spectra[1:] {
		if !slices.Equal(s.Wavelength, spectra[0].Wavelength) {
			return false
		}
	}
	return true
}

func shortestAxis(spectra []*Spectrum) []float64 {
	best := spectra[0].Wavelength
	for _, s := range spectra[1:] {
		if len(s.Wavelength) < len(best) {
			best = s.Wavelength
		}
	}
	return best
}
