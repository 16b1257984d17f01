// Package decision turns a classifier score into a fraud verdict. Evaluate is
// the pure decision rule; Evaluator adds metrics and structured logging around it
// for the dashboard.
package decision

import (
	"context"
	"fmt"
	"math"

	"fraud-dashboard/internal/features"
	"fraud-dashboard/internal/ml"
)

// Verdict is the binary outcome of comparing a probability to a threshold.
type Verdict string

const (
	VerdictNormal     Verdict = "NORMAL"
	VerdictSuspicious Verdict = "SUSPICIOUS"
)

// Result is derived per evaluation and never stored.
type Result struct {
	Probability float64 `json:"probability"`
	Threshold   float64 `json:"threshold"`
	Verdict     Verdict `json:"verdict"`
}

// MissingFeatureError is returned when the vector lacks a bundle column.
type MissingFeatureError = features.MissingFeatureError

type InvalidThresholdError struct {
	Threshold float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("threshold must be within [0, 1], got %v", e.Threshold)
}

// ScoringError wraps a classifier failure or an out-of-range probability.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed: %v", e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// Classify applies the decision rule. Equality counts as suspicious.
func Classify(probability, threshold float64) Verdict {
	if probability >= threshold {
		return VerdictSuspicious
	}
	return VerdictNormal
}

// ValidThreshold reports whether t is a usable threshold.
func ValidThreshold(t float64) bool {
	return !math.IsNaN(t) && t >= 0 && t <= 1
}

// Evaluate scores vector with the bundle's classifier and classifies the fraud
// probability against threshold.
func Evaluate(ctx context.Context, bundle *ml.Bundle, vector features.Vector, threshold float64) (Result, error) {
	if !ValidThreshold(threshold) {
		return Result{}, &InvalidThresholdError{Threshold: threshold}
	}

	row, err := vector.Assemble(bundle.FeatureColumns)
	if err != nil {
		return Result{}, err
	}

	proba, err := bundle.Classifier.PredictProba(ctx, row)
	if err != nil {
		return Result{}, &ScoringError{Err: err}
	}
	if len(proba) < 2 {
		return Result{}, &ScoringError{Err: fmt.Errorf("expected 2 class probabilities, got %d", len(proba))}
	}

	p := proba[1]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Result{}, &ScoringError{Err: fmt.Errorf("fraud probability out of range: %v", p)}
	}

	return Result{
		Probability: p,
		Threshold:   threshold,
		Verdict:     Classify(p, threshold),
	}, nil
}
