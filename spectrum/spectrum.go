package spectrum

import (
	"context"
	"fmt"

	"github.com/viant/phoenixgrid/grid"
)

// Spectrum is a flux density sampled on a wavelength axis.
type Spectrum struct {
	Wavelength     []float64
	Flux           []float64
	WavelengthUnit Unit
	FluxUnit       Unit
}

// Len returns the number of samples.
func (s *Spectrum) Len() int { return len(s.Wavelength) }

// Validate checks that wavelength and flux have matching lengths.
func (s *Spectrum) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil spectrum", ErrMalformed)
	}
	if len(s.Wavelength) != len(s.Flux) {
		return fmt.Errorf("%w: %d wavelengths vs %d flux samples", ErrMalformed, len(s.Wavelength), len(s.Flux))
	}
	return nil
}

// Clone returns a deep copy.
func (s *Spectrum) Clone() *Spectrum {
	return &Spectrum{
		Wavelength:     append([]float64(nil), s.Wavelength...),
		Flux:           append([]float64(nil), s.Flux...),
		WavelengthUnit: s.WavelengthUnit,
		FluxUnit:       s.FluxUnit,
	}
}

// Loader resolves a grid record to its spectrum.
type Loader interface {
	Load(ctx context.Context, rec grid.Record) (*Spectrum, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, rec grid.Record) (*Spectrum, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, rec grid.Record) (*Spectrum, error) {
	return f(ctx, rec)
}
