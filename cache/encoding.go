package cache

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/viant/phoenixgrid/spectrum"
)

// EncodeFloats encodes values as a little-endian sequence of IEEE 754
// float64 values without a length prefix; the length is derived from the
// blob size on decode.
func EncodeFloats(values []float64) []byte {
	if len(values) == 0 {
		return nil
	}
	b := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

// DecodeFloats decodes a blob produced by EncodeFloats.
func DecodeFloats(b []byte) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("cache: invalid float blob length %d (not multiple of 8)", len(b))
	}
	n := len(b) / 8
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return values, nil
}

// Marshal encodes a whole spectrum, units included, as one value:
// two length-prefixed unit strings, the sample count, then the wavelength
// and flux blobs.
func Marshal(s *spectrum.Spectrum) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	b = appendString(b, string(s.WavelengthUnit))
	b = appendString(b, string(s.FluxUnit))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s.Wavelength)))
	b = append(b, EncodeFloats(s.Wavelength)...)
	b = append(b, EncodeFloats(s.Flux)...)
	return b, nil
}

// Unmarshal decodes a value produced by Marshal.
func Unmarshal(b []byte) (*spectrum.Spectrum, error) {
	waveUnit, b, err := readString(b)
	if err != nil {
		return nil, err
	}
	fluxUnit, b, err := readString(b)
	if err != nil {
		return nil, err
	}
	if len(b) < 4 {
		return nil, fmt.Errorf("cache: truncated spectrum header")
	}
	n := int(binary.LittleEndian.Uint32(b))
	b = b[4:]
	if len(b) != n*16 {
		return nil, fmt.Errorf("cache: spectrum payload has %d bytes, want %d", len(b), n*16)
	}
	wavelength, err := DecodeFloats(b[:n*8])
	if err != nil {
		return nil, err
	}
	flux, err := DecodeFloats(b[n*8:])
	if err != nil {
		return nil, err
	}
	return &spectrum.Spectrum{
		Wavelength:     wavelength,
		Flux:           flux,
		WavelengthUnit: spectrum.Unit(waveUnit),
		FluxUnit:       spectrum.Unit(fluxUnit),
	}, nil
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...)
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, fmt.Errorf("cache: truncated unit")
	}
	n := int(binary.LittleEndian.Uint16(b))
	if len(b) < 2+n {
		return "", nil, fmt.Errorf("cache: truncated unit")
	}
	return string(b[2 : 2+n]), b[2+n:], nil
}
