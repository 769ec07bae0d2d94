package model

import "errors"

var (
	// ErrNotFitted reports a prediction before Fit.
	ErrNotFitted = errors.New("model is not fitted")

	// ErrShape reports inputs whose dimensions do not agree.
	ErrShape = errors.New("shape mismatch")
)

// Model is a supervised learner over dense feature rows.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

// Classifier is a binary Model that also exposes p(y=1).
type Classifier interface {
	Model
	PredictProba(X [][]float64) ([]float64, error)
}
