package ml

import (
	"context"
	"fmt"
)

// Logistic is a logistic-regression classifier over positional coefficients.
type Logistic struct {
	intercept    float64
	coefficients []float64
}

func newLogistic(spec *modelSpec, numFeatures int) (*Logistic, error) {
	if spec.Intercept == nil {
		return nil, fmt.Errorf("missing field model.intercept")
	}
	if len(spec.Coefficients) != numFeatures {
		return nil, fmt.Errorf("expected %d coefficients, got %d", numFeatures, len(spec.Coefficients))
	}
	return &Logistic{
		intercept:    *spec.Intercept,
		coefficients: append([]float64(nil), spec.Coefficients...),
	}, nil
}

// PredictProba implements Classifier.
func (l *Logistic) PredictProba(_ context.Context, row []float64) ([]float64, error) {
	if len(row) != len(l.coefficients) {
		return nil, fmt.Errorf("expected %d features, got %d", len(l.coefficients), len(row))
	}

	z := l.intercept
	for i, w := range l.coefficients {
		z += w * row[i]
	}
	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

// Kind implements Classifier.
func (l *Logistic) Kind() string {
	return KindLogistic
}
