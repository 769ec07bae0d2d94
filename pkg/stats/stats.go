// Package stats holds the numeric helpers of the pipeline: feature scaling,
// score summaries and two-sample drift measures.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmpty reports an input with no observations.
	ErrEmpty = errors.New("no observations")

	// ErrNotFitted reports use of an estimator before Fit.
	ErrNotFitted = errors.New("not fitted")

	// ErrDimension reports inputs whose shapes disagree.
	ErrDimension = errors.New("dimension mismatch")
)

// Summary describes a sample of scores with population moments, the way
// cross-validation results are usually reported.
type Summary struct {
	N    int
	Mean float64
	Std  float64
	// SEM is the standard error of the mean, Std/sqrt(N).
	SEM float64
}

// Summarize computes the mean, population standard deviation and standard
// error of x. NaN entries are skipped.
func Summarize(x []float64) Summary {
	vals := finite(x)
	if len(vals) == 0 {
		return Summary{}
	}
	mean, std := stat.PopMeanStdDev(vals, nil)
	return Summary{
		N:    len(vals),
		Mean: mean,
		Std:  std,
		SEM:  std / math.Sqrt(float64(len(vals))),
	}
}

func finite(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
