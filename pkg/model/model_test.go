package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKNN_Predict(t *testing.T) {
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {10, 10}, {10, 11}, {11, 10}}
	y := []float64{0, 0, 0, 1, 1, 1}
	m := NewKNN(3)
	require.NoError(t, m.Fit(X, y))

	pred, err := m.Predict([][]float64{{0.5, 0.5}, {9, 9}, {5.4, 5.4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, pred)

	proba, err := m.PredictProba([][]float64{{0.5, 0.5}, {9, 9}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, proba)
}

func TestKNN_TieGoesToNegative(t *testing.T) {
	m := NewKNN(2)
	require.NoError(t, m.Fit([][]float64{{0}, {2}}, []float64{1, 0}))
	pred, err := m.Predict([][]float64{{1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, pred)
}

func TestKNN_NearestNeighbour(t *testing.T) {
	m := NewKNN(1)
	X := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{0, 1, 0, 1, 0}
	require.NoError(t, m.Fit(X, y))
	pred, err := m.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, pred)
}

func TestKNN_Errors(t *testing.T) {
	_, err := NewKNN(1).Predict([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.ErrorIs(t, NewKNN(1).Fit([][]float64{{1}}, nil), ErrShape)
	assert.ErrorIs(t, NewKNN(3).Fit([][]float64{{1}, {2}}, []float64{0, 1}), ErrShape)
	assert.ErrorIs(t, NewKNN(0).Fit([][]float64{{1}}, []float64{0}), ErrShape)
	assert.ErrorIs(t, NewKNN(1).Fit([][]float64{{1}, {2, 3}}, []float64{0, 1}), ErrShape)

	m := NewKNN(1)
	require.NoError(t, m.Fit([][]float64{{1, 2}}, []float64{1}))
	_, err = m.Predict([][]float64{{1}})
	assert.ErrorIs(t, err, ErrShape)
}

func TestKNN_JSONRoundTrip(t *testing.T) {
	m := NewKNN(1)
	require.NoError(t, m.Fit([][]float64{{0}, {5}}, []float64{0, 1}))
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var back KNN
	require.NoError(t, json.Unmarshal(raw, &back))
	pred, err := back.Predict([][]float64{{4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, pred)
}

func TestMetrics(t *testing.T) {
	yTrue := []float64{1, 1, 1, 1, 0, 0, 0, 0}
	yPred := []float64{1, 1, 1, 0, 1, 0, 0, 0}

	assert.InDelta(t, 0.75, Accuracy(yTrue, yPred), 1e-12)
	p, r := PrecisionRecall(yTrue, yPred)
	assert.InDelta(t, 0.75, p, 1e-12)
	assert.InDelta(t, 0.75, r, 1e-12)
	assert.InDelta(t, 0.75, FBeta(yTrue, yPred, 2), 1e-12)

	// p = 1, r = 0.5: F2 = 5 * 0.5 / (4 + 0.5)
	assert.InDelta(t, 2.5/4.5, FBeta([]float64{1, 1}, []float64{1, 0}, 2), 1e-12)
	assert.Equal(t, 0.0, FBeta([]float64{0, 0}, []float64{0, 0}, 2))
}

func TestEvaluate(t *testing.T) {
	var m Classifier = NewKNN(1)
	require.NoError(t, m.Fit([][]float64{{0}, {10}}, []float64{0, 1}))

	got, err := Evaluate(m, [][]float64{{1}, {9}, {6}}, []float64{0, 1, 0}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, got.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, got.Precision, 1e-12)
	assert.InDelta(t, 1, got.Recall, 1e-12)
	assert.Equal(t, 2.0, got.Beta)

	_, err = Evaluate(m, [][]float64{{1}}, nil, 2)
	assert.ErrorIs(t, err, ErrShape)
}
