package decision

import (
	"context"
	"errors"
	"time"

	"fraud-dashboard/internal/features"
	"fraud-dashboard/internal/ml"

	"github.com/rs/zerolog/log"
)

// MetricsInterface defines metrics methods needed by the evaluator
type MetricsInterface interface {
	EvaluationsInc(verdict string)
	EvaluationErrorsInc(kind string)
	EvaluationLatencyObserve(float64)
	ProbabilityObserve(float64)
}

// Error kinds reported to MetricsInterface.EvaluationErrorsInc.
const (
	ErrKindThreshold = "invalid_threshold"
	ErrKindMissing   = "missing_feature"
	ErrKindScoring   = "scoring"
)

// Evaluator binds a loaded bundle to the process's metrics.
type Evaluator struct {
	bundle  *ml.Bundle
	metrics MetricsInterface
}

func NewEvaluator(bundle *ml.Bundle, metrics MetricsInterface) *Evaluator {
	return &Evaluator{bundle: bundle, metrics: metrics}
}

func (e *Evaluator) Bundle() *ml.Bundle {
	return e.bundle
}

func (e *Evaluator) DefaultThreshold() float64 {
	return e.bundle.Threshold
}

// Evaluate runs Evaluate against the bound bundle and records the outcome.
func (e *Evaluator) Evaluate(ctx context.Context, vector features.Vector, threshold float64) (Result, error) {
	start := time.Now()
	res, err := Evaluate(ctx, e.bundle, vector, threshold)
	if e.metrics != nil {
		e.metrics.EvaluationLatencyObserve(time.Since(start).Seconds())
	}

	if err != nil {
		kind := ErrorKind(err)
		if e.metrics != nil {
			e.metrics.EvaluationErrorsInc(kind)
		}
		log.Warn().
			Err(err).
			Str("kind", kind).
			Float64("threshold", threshold).
			Msg("Evaluation rejected")
		return Result{}, err
	}

	if e.metrics != nil {
		e.metrics.EvaluationsInc(string(res.Verdict))
		e.metrics.ProbabilityObserve(res.Probability)
	}

	log.Debug().
		Float64("probability", res.Probability).
		Float64("threshold", res.Threshold).
		Str("verdict", string(res.Verdict)).
		Dur("latency", time.Since(start)).
		Msg("Transaction evaluated")

	return res, nil
}

// ErrorKind classifies an evaluation error for metrics and API responses.
func ErrorKind(err error) string {
	var ite *InvalidThresholdError
	var mfe *MissingFeatureError
	switch {
	case errors.As(err, &ite):
		return ErrKindThreshold
	case errors.As(err, &mfe):
		return ErrKindMissing
	default:
		return ErrKindScoring
	}
}
