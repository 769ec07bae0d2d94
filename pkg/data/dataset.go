package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Dataset is a named table of string cells with ordered, unique column names.
// A Dataset is never modified after construction; every transformation returns a new one.
type Dataset struct {
	Name    string
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a Dataset, copying columns and rows.
func New(name string, columns []string, rows [][]string) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: duplicate column name %q", ErrInvalidInput, c)
		}
		index[c] = i
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrColumnCount, i, len(r), len(columns))
		}
		cp[i] = append([]string(nil), r...)
	}
	return &Dataset{
		Name:    name,
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    cp,
	}, nil
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string { return append([]string(nil), d.columns...) }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Width returns the number of columns.
func (d *Dataset) Width() int { return len(d.columns) }

// HasColumn reports whether name is a column of d.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Index returns the position of column name, or -1.
func (d *Dataset) Index(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string { return append([]string(nil), d.rows[i]...) }

// Rows returns a deep copy of all rows.
func (d *Dataset) Rows() [][]string {
	out := make([][]string, len(d.rows))
	for i := range d.rows {
		out[i] = d.Row(i)
	}
	return out
}

// Column returns a copy of the values of the named column.
func (d *Dataset) Column(name string) ([]string, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	out := make([]string, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Floats parses the named column. Null cells come back as 0 with valid[i] false;
// any other unparsable cell is an error.
func (d *Dataset) Floats(name string) (vals []float64, valid []bool, err error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, nil, err
	}
	vals = make([]float64, len(col))
	valid = make([]bool, len(col))
	for i, s := range col {
		if IsNull(s) {
			continue
		}
		v, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return nil, nil, fmt.Errorf("%w: column %q row %d: %q is not numeric", ErrInvalidInput, name, i, s)
		}
		vals[i] = v
		valid[i] = true
	}
	return vals, valid, nil
}

// IsNumeric reports whether every non-null cell of the column parses as a float
// and at least one cell is non-null.
func (d *Dataset) IsNumeric(name string) bool {
	_, valid, err := d.Floats(name)
	if err != nil {
		return false
	}
	for _, ok := range valid {
		if ok {
			return true
		}
	}
	return false
}

// Drop returns a dataset without the given columns. Every column must exist.
func (d *Dataset) Drop(names ...string) (*Dataset, error) {
	skip := make(map[int]bool, len(names))
	for _, n := range names {
		j, ok := d.index[n]
		if !ok {
			return nil, fmt.Errorf("%w: cannot drop %q", ErrColumnNotFound, n)
		}
		skip[j] = true
	}
	cols := make([]string, 0, len(d.columns)-len(skip))
	for j, c := range d.columns {
		if !skip[j] {
			cols = append(cols, c)
		}
	}
	rows := make([][]string, len(d.rows))
	for i, r := range d.rows {
		row := make([]string, 0, len(cols))
		for j, v := range r {
			if !skip[j] {
				row = append(row, v)
			}
		}
		rows[i] = row
	}
	return New(d.Name, cols, rows)
}

// Replace returns a dataset whose named column has been passed through fn.
func (d *Dataset) Replace(name string, fn func(string) string) (*Dataset, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	rows := d.Rows()
	for _, r := range rows {
		r[j] = fn(r[j])
	}
	return New(d.Name, d.columns, rows)
}

// WithColumn returns a dataset whose named column holds values. A new column
// is appended at the end.
func (d *Dataset) WithColumn(name string, values []string) (*Dataset, error) {
	if len(values) != len(d.rows) {
		return nil, fmt.Errorf("%w: column %q has %d values, want %d", ErrColumnCount, name, len(values), len(d.rows))
	}
	cols := d.Columns()
	rows := d.Rows()
	j, ok := d.index[name]
	if !ok {
		cols = append(cols, name)
		j = len(cols) - 1
		for i := range rows {
			rows[i] = append(rows[i], "")
		}
	}
	for i := range rows {
		rows[i][j] = values[i]
	}
	return New(d.Name, cols, rows)
}

// Select returns the rows at the given indices, in that order.
func (d *Dataset) Select(name string, idx []int) *Dataset {
	rows := make([][]string, len(idx))
	for i, k := range idx {
		rows[i] = append([]string(nil), d.rows[k]...)
	}
	return &Dataset{Name: name, columns: d.Columns(), index: d.index, rows: rows}
}

// RowKey returns a string identifying the full contents of row i.
// Two rows have equal keys exactly when every cell is equal.
func (d *Dataset) RowKey(i int) string {
	return strings.Join(d.rows[i], "\x1f")
}

// nullTokens are the cell spellings treated as missing.
var nullTokens = map[string]bool{"": true, "NA": true, "NaN": true, "nan": true, "null": true}

// IsNull reports whether a cell counts as missing.
func IsNull(s string) bool { return nullTokens[strings.TrimSpace(s)] }
