package stats

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// KSStatistic returns the two-sample Kolmogorov-Smirnov statistic of a and
// b: the largest distance between their empirical distribution functions,
// in [0, 1]. NaN entries are skipped.
func KSStatistic(a, b []float64) (float64, error) {
	x, y := finite(a), finite(b)
	if len(x) == 0 || len(y) == 0 {
		return 0, fmt.Errorf("kolmogorov-smirnov: %w", ErrEmpty)
	}
	slices.Sort(x)
	slices.Sort(y)
	return stat.KolmogorovSmirnov(x, nil, y, nil), nil
}

// CramersV measures the association between sample membership and category
// for two categorical samples, from 0 (same distribution) to 1 (disjoint
// categories). It is computed from the chi-square statistic of the
// 2 x C contingency table.
func CramersV(a, b []string) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("cramer's v: %w", ErrEmpty)
	}
	ca, cb := counts(a), counts(b)
	cats := make([]string, 0, len(ca)+len(cb))
	for k := range ca {
		cats = append(cats, k)
	}
	for k := range cb {
		if _, ok := ca[k]; !ok {
			cats = append(cats, k)
		}
	}
	if len(cats) < 2 {
		return 0, nil
	}
	slices.Sort(cats)

	na, nb := float64(len(a)), float64(len(b))
	n := na + nb
	obs := make([]float64, 0, 2*len(cats))
	exp := make([]float64, 0, 2*len(cats))
	for _, row := range []struct {
		counts map[string]float64
		total  float64
	}{{ca, na}, {cb, nb}} {
		for _, c := range cats {
			obs = append(obs, row.counts[c])
			exp = append(exp, row.total*(ca[c]+cb[c])/n)
		}
	}
	chi2 := stat.ChiSquare(obs, exp)
	// min(rows, cols) - 1 is 1 for a two-row table
	return math.Sqrt(chi2 / n), nil
}

func counts(x []string) map[string]float64 {
	out := make(map[string]float64)
	for _, v := range x {
		out[v]++
	}
	return out
}
