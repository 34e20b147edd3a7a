package fits

import (
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"
)

// Column describes one table column.
type Column struct {
	Name   string
	Format string
	Unit   string
}

// Table is a binary table read fully into memory.
type Table struct {
	Name    string
	Columns []Column
	cells   [][]any
}

func newTable(t *fitsio.Table) (*Table, error) {
	cols := t.Cols()
	out := &Table{Name: t.Name(), Columns: make([]Column, len(cols)), cells: make([][]any, len(cols))}
	for i, c := range cols {
		out.Columns[i] = Column{Name: strings.TrimSpace(c.Name), Format: c.Format, Unit: strings.TrimSpace(c.Unit)}
	}
	rows, err := t.Read(0, t.NumRows())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	defer rows.Close()
	for rows.Next() {
		row := map[string]any{}
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		for i, c := range cols {
			out.cells[i] = append(out.cells[i], row[c.Name])
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return out, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if len(t.cells) == 0 {
		return 0
	}
	return len(t.cells[0])
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column returns the column called name, compared case-insensitively.
func (t *Table) Column(name string) (*Column, error) {
	i, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	return &t.Columns[i], nil
}

// Float64Column returns a numeric scalar column as float64 values.
func (t *Table) Float64Column(name string) ([]float64, error) {
	i, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.cells[i]))
	for row, cell := range t.cells[i] {
		v, ok := number(cell)
		if !ok {
			return nil, fmt.Errorf("fits: column %q (%s) is not numeric", t.Columns[i].Name, t.Columns[i].Format)
		}
		out[row] = v
	}
	return out, nil
}

// StringColumn returns a character column with trailing padding removed.
func (t *Table) StringColumn(name string) ([]string, error) {
	i, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.cells[i]))
	for row, cell := range t.cells[i] {
		s, ok := text(cell)
		if !ok {
			return nil, fmt.Errorf("fits: column %q (%s) is not a string", t.Columns[i].Name, t.Columns[i].Format)
		}
		out[row] = s
	}
	return out, nil
}

func (t *Table) lookup(name string) (int, error) {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("fits: no column %q", name)
}
