package fits

import (
	"fmt"
	"io"

	"github.com/astrogo/fitsio"
)

// TableColumn is a column to write. Exactly one of Float64s and Strings
// should be set; string columns are written as fixed-width characters.
type TableColumn struct {
	Name     string
	Unit     string
	Float64s []float64
	Strings  []string
}

func (c TableColumn) rows() int {
	if c.Strings != nil {
		return len(c.Strings)
	}
	return len(c.Float64s)
}

func (c TableColumn) format() string {
	if c.Strings == nil {
		return "D"
	}
	width := 1
	for _, s := range c.Strings {
		width = max(width, len(s))
	}
	return fmt.Sprintf("%dA", width)
}

// WriteImage writes values as a 1-D double precision primary image.
func WriteImage(w io.Writer, values []float64, cards ...fitsio.Card) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	err = writeImage(f, values, cards)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeImage(f *fitsio.File, values []float64, cards []fitsio.Card) error {
	img := fitsio.NewImage(-64, []int{len(values)})
	defer img.Close()
	if err := img.Header().Append(cards...); err != nil {
		return err
	}
	if err := img.Write(&values); err != nil {
		return err
	}
	return f.Write(img)
}

// WriteTable writes an empty primary HDU followed by a binary table called
// name.
func WriteTable(w io.Writer, name string, columns []TableColumn, cards ...fitsio.Card) error {
	rows := 0
	if len(columns) > 0 {
		rows = columns[0].rows()
	}
	for _, c := range columns {
		if c.rows() != rows {
			return fmt.Errorf("fits: column %q has %d rows, want %d", c.Name, c.rows(), rows)
		}
	}
	f, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	err = writeTable(f, name, columns, rows, cards)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeTable(f *fitsio.File, name string, columns []TableColumn, rows int, cards []fitsio.Card) error {
	primary, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return err
	}
	if err := f.Write(primary); err != nil {
		return err
	}

	cols := make([]fitsio.Column, len(columns))
	for i, c := range columns {
		cols[i] = fitsio.Column{Name: c.Name, Format: c.format(), Unit: c.Unit}
	}
	table, err := fitsio.NewTable(name, cols, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer table.Close()
	if err := table.Header().Append(cards...); err != nil {
		return err
	}
	args := make([]any, len(columns))
	for row := 0; row < rows; row++ {
		for i, c := range columns {
			if c.Strings != nil {
				args[i] = &c.Strings[row]
			} else {
				args[i] = &c.Float64s[row]
			}
		}
		if err := table.Write(args...); err != nil {
			return fmt.Errorf("fits: row %d: %w", row, err)
		}
	}
	return f.Write(table)
}
