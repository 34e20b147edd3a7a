package spectrum

import (
	"fmt"
	"math"
	"strings"
)

// Unit names the physical unit of a sample array.
type Unit string

const (
	Angstrom   Unit = "Angstrom"
	Nanometer  Unit = "nm"
	Micrometer Unit = "um"
	Centimeter Unit = "cm"
	Meter      Unit = "m"

	// FluxPerAngstrom is the synphot atlas flux density unit.
	FluxPerAngstrom Unit = "erg/(s cm2 Angstrom)"
	// FluxPerCentimeter is the HiRes FITS flux density unit.
	FluxPerCentimeter Unit = "erg/(s cm2 cm)"
	FluxPerMeter      Unit = "W/(m2 m)"
	FluxPerNanometer  Unit = "W/(m2 nm)"
)

type dimension int

const (
	length dimension = iota + 1
	fluxDensity
)

type scale struct {
	dim dimension
	exp int
}

// scales maps known units to the power of ten relating them to the SI unit
// of the same dimension (m for length, W m^-3 for flux density).
var scales = map[Unit]scale{
	Angstrom:          {length, -10},
	Nanometer:         {length, -9},
	Micrometer:        {length, -6},
	Centimeter:        {length, -2},
	Meter:             {length, 0},
	FluxPerAngstrom:   {fluxDensity, 7},
	FluxPerCentimeter: {fluxDensity, 1},
	FluxPerMeter:      {fluxDensity, 0},
	FluxPerNanometer:  {fluxDensity, 9},
}

var aliases = map[string]Unit{
	"angstrom":               Angstrom,
	"angstroms":              Angstrom,
	"aa":                     Angstrom,
	"å":                      Angstrom,
	"nanometer":              Nanometer,
	"micron":                 Micrometer,
	"µm":                     Micrometer,
	"erg/s/cm2/angstrom":     FluxPerAngstrom,
	"erg/(s cm2 aa)":         FluxPerAngstrom,
	"flam":                   FluxPerAngstrom,
	"erg/s/cm2/cm":           FluxPerCentimeter,
	"erg/s/cm^2/cm":          FluxPerCentimeter,
	"w/m3":                   FluxPerMeter,
	"w/(m2 m)":               FluxPerMeter,
	"w/(m2 nm)":              FluxPerNanometer,
	"erg/(s cm2 angstrom)":   FluxPerAngstrom,
	"erg/(s cm2 cm)":         FluxPerCentimeter,
	"erg / (s cm2 angstrom)": FluxPerAngstrom,
}

// ParseUnit normalises common spellings (including FITS TUNIT/BUNIT values)
// to a known unit. Unrecognised names are returned verbatim.
func ParseUnit(name string) Unit {
	trimmed := strings.TrimSpace(name)
	if _, ok := scales[Unit(trimmed)]; ok {
		return Unit(trimmed)
	}
	if u, ok := aliases[strings.ToLower(trimmed)]; ok {
		return u
	}
	return Unit(trimmed)
}

// Known reports whether the unit has a conversion factor.
func (u Unit) Known() bool {
	_, ok := scales[u]
	return ok
}

// Factor returns the multiplier converting values in u to values in to.
// Identical units always convert with factor 1, including unknown ones.
func (u Unit) Factor(to Unit) (float64, error) {
	if u == to {
		return 1, nil
	}
	from, ok := scales[u]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrUnitMismatch, u)
	}
	target, ok := scales[to]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrUnitMismatch, to)
	}
	if from.dim != target.dim {
		return 0, fmt.Errorf("%w: %q is not convertible to %q", ErrUnitMismatch, u, to)
	}
	return math.Pow10(from.exp - target.exp), nil
}

// Convert returns s expressed in the given units. Empty target units keep
// the spectrum's own. When no conversion applies the result shares s's slices.
func Convert(s *Spectrum, wavelength, flux Unit) (*Spectrum, error) {
	if wavelength == "" {
		wavelength = s.WavelengthUnit
	}
	if flux == "" {
		flux = s.FluxUnit
	}
	wf, err := s.WavelengthUnit.Factor(wavelength)
	if err != nil {
		return nil, err
	}
	ff, err := s.FluxUnit.Factor(flux)
	if err != nil {
		return nil, err
	}
	if wf == 1 && ff == 1 {
		out := *s
		out.WavelengthUnit, out.FluxUnit = wavelength, flux
		return &out, nil
	}
	return &Spectrum{
		Wavelength:     scaled(s.Wavelength, wf),
		Flux:           scaled(s.Flux, ff),
		WavelengthUnit: wavelength,
		FluxUnit:       flux,
	}, nil
}

func scaled(values []float64, factor float64) []float64 {
	if factor == 1 {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}
