package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"cancerml/pkg/data"
	"cancerml/pkg/stats"
)

// ColumnScaler standardises the numeric columns of a dataset and passes every
// other column through untouched. A column is numeric when all of its
// non-null cells parse as numbers.
type ColumnScaler struct {
	Columns []string              `json:"columns"`
	Numeric []string              `json:"numeric"`
	Scaler  *stats.StandardScaler `json:"scaler,omitempty"`
}

func NewColumnScaler() *ColumnScaler { return &ColumnScaler{} }

// Fitted reports whether Fit has run.
func (c *ColumnScaler) Fitted() bool { return c.Scaler != nil && c.Scaler.Fitted() }

// Unfitted returns a fresh scaler that selects columns the same way c does.
func (c *ColumnScaler) Unfitted() *ColumnScaler { return NewColumnScaler() }

// Fit selects the numeric columns of ds and learns their mean and spread.
func (c *ColumnScaler) Fit(ds *data.Dataset) error {
	if ds == nil || ds.Len() == 0 {
		return fmt.Errorf("%w: cannot fit a scaler on an empty dataset", data.ErrInvalidInput)
	}
	var numeric []string
	for _, col := range ds.Columns() {
		if ds.IsNumeric(col) {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) == 0 {
		return fmt.Errorf("%w: dataset %q has no numeric columns", data.ErrInvalidInput, ds.Name)
	}
	X, err := matrix(ds, numeric)
	if err != nil {
		return err
	}
	scaler := stats.NewStandardScaler()
	if err := scaler.Fit(X); err != nil {
		return err
	}
	c.Columns, c.Numeric, c.Scaler = ds.Columns(), numeric, scaler
	return nil
}

// Features returns the scaled numeric columns of ds as rows, in Numeric order.
// Missing cells become 0, the training mean.
func (c *ColumnScaler) Features(ds *data.Dataset) ([][]float64, error) {
	if !c.Fitted() {
		return nil, fmt.Errorf("column scaler: %w", stats.ErrNotFitted)
	}
	X, err := matrix(ds, c.Numeric)
	if err != nil {
		return nil, err
	}
	return c.Scaler.Transform(X)
}

// Transform returns ds with its numeric columns scaled. ds must have the
// columns seen by Fit, in the same order.
func (c *ColumnScaler) Transform(ds *data.Dataset) (*data.Dataset, error) {
	if !c.Fitted() {
		return nil, fmt.Errorf("column scaler: %w", stats.ErrNotFitted)
	}
	if !slices.Equal(ds.Columns(), c.Columns) {
		return nil, fmt.Errorf("%w: dataset %q columns differ from the fitted columns", data.ErrInvalidInput, ds.Name)
	}
	Y, err := c.Features(ds)
	if err != nil {
		return nil, err
	}
	out := ds
	for j, col := range c.Numeric {
		values := make([]string, len(Y))
		for i := range Y {
			values[i] = strconv.FormatFloat(Y[i][j], 'f', -1, 64)
		}
		if out, err = out.WithColumn(col, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitTransform fits on ds and returns it scaled.
func (c *ColumnScaler) FitTransform(ds *data.Dataset) (*data.Dataset, error) {
	if err := c.Fit(ds); err != nil {
		return nil, err
	}
	return c.Transform(ds)
}

// matrix reads cols as rows of floats with NaN for null cells.
func matrix(ds *data.Dataset, cols []string) ([][]float64, error) {
	X := make([][]float64, ds.Len())
	for i := range X {
		X[i] = make([]float64, len(cols))
	}
	for j, col := range cols {
		vals, valid, err := ds.Floats(col)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			if !valid[i] {
				v = math.NaN()
			}
			X[i][j] = v
		}
	}
	return X, nil
}

// SaveScaler writes c as JSON to dir/filename and returns the path.
func SaveScaler(c *ColumnScaler, dir, filename string) (string, error) {
	return writeJSON(c, dir, filename)
}

// LoadScaler reads a scaler written by SaveScaler.
func LoadScaler(path string) (*ColumnScaler, error) {
	var c ColumnScaler
	if err := readJSON(path, "preprocessor", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func writeJSON(v any, dir, filename string) (string, error) {
	if err := data.EnsureDir(dir); err != nil {
		return "", err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", filename, err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func readJSON(path, what string, v any) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: the %s file %s does not exist", data.ErrNotFound, what, path)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", data.ErrInvalidInput, what, path, err)
	}
	return nil
}
