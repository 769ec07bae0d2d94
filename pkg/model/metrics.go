package model

import "fmt"

// Metrics summarises binary predictions against the truth, 1 being positive.
type Metrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	FBeta     float64
	Beta      float64
}

// Accuracy is the share of predictions equal to the truth.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// PrecisionRecall computes precision and recall for the positive class.
// An empty denominator yields 0.
func PrecisionRecall(yTrue, yPred []float64) (prec, rec float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1:
			fp++
		case yTrue[i] == 1:
			fn++
		}
	}
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	return prec, rec
}

// FBeta weighs recall beta times as much as precision:
// (1+b^2) * p * r / (b^2 * p + r). It is 0 when both are 0.
func FBeta(yTrue, yPred []float64, beta float64) float64 {
	p, r := PrecisionRecall(yTrue, yPred)
	b2 := beta * beta
	if b2*p+r == 0 {
		return 0
	}
	return (1 + b2) * p * r / (b2*p + r)
}

// Evaluate predicts X with m and scores the result against y.
func Evaluate(m Model, X [][]float64, y []float64, beta float64) (Metrics, error) {
	if len(X) != len(y) {
		return Metrics{}, fmt.Errorf("%w: %d rows but %d labels", ErrShape, len(X), len(y))
	}
	pred, err := m.Predict(X)
	if err != nil {
		return Metrics{}, err
	}
	p, r := PrecisionRecall(y, pred)
	return Metrics{
		Accuracy:  Accuracy(y, pred),
		Precision: p,
		Recall:    r,
		FBeta:     FBeta(y, pred, beta),
		Beta:      beta,
	}, nil
}
