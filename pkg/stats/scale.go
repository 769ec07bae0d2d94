package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centres each column to zero mean and scales it to unit
// (population) variance. NaN marks a missing value: it is ignored when
// fitting and becomes 0, the column mean, when transforming.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fitted reports whether Fit has been called successfully.
func (s *StandardScaler) Fitted() bool { return len(s.Mean) > 0 && len(s.Mean) == len(s.Std) }

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return fmt.Errorf("standard scaler: %w", ErrEmpty)
	}
	c := len(X[0])
	for i, row := range X {
		if len(row) != c {
			return fmt.Errorf("standard scaler: row %d has %d columns, want %d: %w", i, len(row), c, ErrDimension)
		}
	}
	mean := make([]float64, c)
	std := make([]float64, c)
	col := make([]float64, 0, len(X))
	for j := range c {
		col = col[:0]
		for _, row := range X {
			if !math.IsNaN(row[j]) {
				col = append(col, row[j])
			}
		}
		if len(col) == 0 {
			return fmt.Errorf("standard scaler: column %d has no values: %w", j, ErrEmpty)
		}
		mean[j], std[j] = stat.PopMeanStdDev(col, nil)
		// constant columns are centred but not scaled
		if std[j] == 0 {
			std[j] = 1
		}
	}
	s.Mean, s.Std = mean, std
	return nil
}

func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.Fitted() {
		return nil, fmt.Errorf("standard scaler: %w", ErrNotFitted)
	}
	c := len(s.Mean)
	Y := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != c {
			return nil, fmt.Errorf("standard scaler: row %d has %d columns, want %d: %w", i, len(row), c, ErrDimension)
		}
		out := make([]float64, c)
		for j, v := range row {
			if !math.IsNaN(v) {
				out[j] = (v - s.Mean[j]) / s.Std[j]
			}
		}
		Y[i] = out
	}
	return Y, nil
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
