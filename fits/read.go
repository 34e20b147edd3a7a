package fits

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/astrogo/fitsio"
)

// ErrFormat reports input that is not a usable FITS stream.
var ErrFormat = errors.New("fits: invalid format")

// maxDecodeSize bounds the bytes buffered for one stream.
const maxDecodeSize = 1 << 30

// Image is a decoded primary image with BSCALE and BZERO applied.
type Image struct {
	Values []float64
	Unit   string
	Header *fitsio.Header
}

// Float returns the numeric value of a header keyword, or def when the
// keyword is absent.
func (img *Image) Float(name string, def float64) (float64, error) {
	return cardFloat(img.Header, name, def)
}

// ReadImage decodes the primary image of r.
func ReadImage(r io.Reader) (*Image, error) {
	var out *Image
	err := decode(r, func(f *fitsio.File) error {
		hdus := f.HDUs()
		if len(hdus) == 0 {
			return fmt.Errorf("%w: no primary HDU", ErrFormat)
		}
		img, ok := hdus[0].(fitsio.Image)
		if !ok {
			return fmt.Errorf("%w: primary HDU is %v", ErrFormat, hdus[0].Type())
		}
		var err error
		out, err = newImage(img)
		return err
	})
	return out, err
}

// ReadTable decodes the first binary table extension of r.
func ReadTable(r io.Reader) (*Table, error) {
	var out *Table
	err := decode(r, func(f *fitsio.File) error {
		for _, hdu := range f.HDUs() {
			if t, ok := hdu.(*fitsio.Table); ok && hdu.Type() == fitsio.BINARY_TBL {
				var err error
				out, err = newTable(t)
				return err
			}
		}
		return fmt.Errorf("%w: no binary table", ErrFormat)
	})
	return out, err
}

// decode buffers r and hands the opened file to fn. fitsio panics on some
// malformed headers (oversized PCOUNT or GCOUNT among them); those panics
// surface as ErrFormat.
func decode(r io.Reader, fn func(*fitsio.File) error) (err error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDecodeSize+1))
	if err != nil {
		return err
	}
	if len(data) > maxDecodeSize {
		return fmt.Errorf("%w: stream exceeds %d bytes", ErrFormat, maxDecodeSize)
	}
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", ErrFormat, v)
		}
	}()
	f, err := fitsio.Open(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	defer f.Close()
	return fn(f)
}

func newImage(img fitsio.Image) (*Image, error) {
	hdr := img.Header()
	n := 0
	if axes := hdr.Axes(); len(axes) > 0 {
		n = 1
		for _, a := range axes {
			n *= a
		}
	}
	if n < 0 || n > maxDecodeSize {
		return nil, fmt.Errorf("%w: image of %d pixels", ErrFormat, n)
	}
	values := make([]float64, n)
	if n > 0 {
		var err error
		switch bitpix := hdr.Bitpix(); bitpix {
		case 8:
			err = readPixels[uint8](img, values)
		case 16:
			err = readPixels[int16](img, values)
		case 32:
			err = readPixels[int32](img, values)
		case 64:
			err = readPixels[int64](img, values)
		case -32:
			err = readPixels[float32](img, values)
		case -64:
			err = readPixels[float64](img, values)
		default:
			err = fmt.Errorf("%w: unsupported BITPIX %d", ErrFormat, bitpix)
		}
		if err != nil {
			return nil, err
		}
	}

	scale, err := cardFloat(hdr, "BSCALE", 1)
	if err != nil {
		return nil, err
	}
	zero, err := cardFloat(hdr, "BZERO", 0)
	if err != nil {
		return nil, err
	}
	if scale != 1 || zero != 0 {
		for i, v := range values {
			values[i] = zero + scale*v
		}
	}
	return &Image{Values: values, Unit: cardString(hdr, "BUNIT"), Header: hdr}, nil
}

type pixel interface {
	uint8 | int16 | int32 | int64 | float32 | float64
}

func readPixels[T pixel](img fitsio.Image, out []float64) error {
	buf := make([]T, len(out))
	if err := img.Read(&buf); err != nil {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	for i, v := range buf {
		out[i] = float64(v)
	}
	return nil
}

func cardFloat(hdr *fitsio.Header, name string, def float64) (float64, error) {
	c := hdr.Get(name)
	if c == nil {
		return def, nil
	}
	if v, ok := number(c.Value); ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %s is %T, want a number", ErrFormat, name, c.Value)
}

func cardString(hdr *fitsio.Header, name string) string {
	if c := hdr.Get(name); c != nil {
		if s, ok := c.Value.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// number converts a decoded cell or card value, possibly behind a pointer.
func number(v any) (float64, bool) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

func text(v any) (string, bool) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.String {
		return "", false
	}
	return strings.TrimSpace(strings.TrimRight(rv.String(), "\x00")), true
}
