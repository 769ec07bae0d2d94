package model

import (
	"fmt"
	"runtime"
	"sync"
)

// KNN is a k-nearest-neighbour classifier for 0/1 labels. It keeps the
// training rows, so the zero value plus a K is all that needs persisting.
type KNN struct {
	K int         `json:"k"`
	X [][]float64 `json:"x"`
	Y []float64   `json:"y"`
}

// NewKNN creates and returns a new KNN model.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

// Fit stores the training data and labels.
func (m *KNN) Fit(X [][]float64, y []float64) error {
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d feature vectors but %d labels", ErrShape, len(X), len(y))
	}
	if m.K < 1 || m.K > len(X) {
		return fmt.Errorf("%w: k = %d needs between 1 and %d training rows", ErrShape, m.K, len(X))
	}
	for i, row := range X {
		if len(row) != len(X[0]) {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), len(X[0]))
		}
	}
	m.X = X
	m.Y = y
	return nil
}

// Predict returns the majority label of the K nearest neighbours of each row.
// A tied vote goes to 0.
func (m *KNN) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	for i, p := range proba {
		if p > 0.5 {
			proba[i] = 1
		} else {
			proba[i] = 0
		}
	}
	return proba, nil
}

// PredictProba returns the share of positive labels among the K nearest
// neighbours of each row. Rows are spread over GOMAXPROCS goroutines.
func (m *KNN) PredictProba(X [][]float64) ([]float64, error) {
	if len(m.X) == 0 {
		return nil, ErrNotFitted
	}
	width := len(m.X[0])
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), width)
		}
	}
	if len(X) == 0 {
		return nil, nil
	}

	out := make([]float64, len(X))
	procs := runtime.GOMAXPROCS(0)
	chunk := (len(X) + procs - 1) / procs

	var wg sync.WaitGroup
	for lo := 0; lo < len(X); lo += chunk {
		hi := min(lo+chunk, len(X))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = m.vote(X[i])
			}
		}()
	}
	wg.Wait()
	return out, nil
}

// vote returns the mean label of the K nearest training rows. Equal
// distances keep training order.
func (m *KNN) vote(xi []float64) float64 {
	type pair struct {
		d float64
		v float64
	}

	// sorted by distance, at most K long
	nbrs := make([]pair, 0, m.K+1)
	for j, xj := range m.X {
		d := sqDist(xi, xj)
		if len(nbrs) == m.K && d >= nbrs[len(nbrs)-1].d {
			continue
		}
		pos := len(nbrs)
		for pos > 0 && nbrs[pos-1].d > d {
			pos--
		}
		nbrs = append(nbrs, pair{})
		copy(nbrs[pos+1:], nbrs[pos:])
		nbrs[pos] = pair{d: d, v: m.Y[j]}
		if len(nbrs) > m.K {
			nbrs = nbrs[:m.K]
		}
	}

	sum := 0.0
	for _, p := range nbrs {
		sum += p.v
	}
	return sum / float64(len(nbrs))
}

func sqDist(a, b []float64) float64 {
	var d2 float64
	for i, v := range a {
		d := v - b[i]
		d2 += d * d
	}
	return d2
}
