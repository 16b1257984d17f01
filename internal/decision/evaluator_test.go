package decision

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fraud-dashboard/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockMetrics struct {
	evaluations map[string]int
	errors      map[string]int
	latencies   []float64
	scores      []float64
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		evaluations: make(map[string]int),
		errors:      make(map[string]int),
	}
}

func (m *MockMetrics) EvaluationsInc(verdict string)      { m.evaluations[verdict]++ }
func (m *MockMetrics) EvaluationErrorsInc(kind string)    { m.errors[kind]++ }
func (m *MockMetrics) EvaluationLatencyObserve(v float64) { m.latencies = append(m.latencies, v) }
func (m *MockMetrics) ProbabilityObserve(v float64)       { m.scores = append(m.scores, v) }

func TestEvaluatorRecordsMetrics(t *testing.T) {
	bundle := fixedBundle(0.8, nil)
	metrics := NewMockMetrics()
	e := NewEvaluator(bundle, metrics)

	assert.Same(t, bundle, e.Bundle())
	assert.Equal(t, 0.5, e.DefaultThreshold())

	res, err := e.Evaluate(context.Background(), features.Zero(bundle.FeatureColumns), e.DefaultThreshold())
	require.NoError(t, err)
	assert.Equal(t, VerdictSuspicious, res.Verdict)

	_, err = e.Evaluate(context.Background(), features.Vector{}, 0.5)
	require.Error(t, err)

	_, err = e.Evaluate(context.Background(), features.Zero(bundle.FeatureColumns), 2)
	require.Error(t, err)

	assert.Equal(t, 1, metrics.evaluations["SUSPICIOUS"])
	assert.Equal(t, 1, metrics.errors[ErrKindMissing])
	assert.Equal(t, 1, metrics.errors[ErrKindThreshold])
	assert.Len(t, metrics.latencies, 3)
	assert.Equal(t, []float64{0.8}, metrics.scores)
}

func TestEvaluatorScoringErrorKind(t *testing.T) {
	metrics := NewMockMetrics()
	bundle := fixedBundle(0, errors.New("timeout"))
	e := NewEvaluator(bundle, metrics)

	_, err := e.Evaluate(context.Background(), features.Zero(bundle.FeatureColumns), 0.5)
	require.Error(t, err)
	assert.Equal(t, 1, metrics.errors[ErrKindScoring])
}

func TestEvaluatorWithoutMetrics(t *testing.T) {
	bundle := fixedBundle(0.1, nil)
	e := NewEvaluator(bundle, nil)

	res, err := e.Evaluate(context.Background(), features.Zero(bundle.FeatureColumns), 0.5)
	require.NoError(t, err)
	assert.Equal(t, VerdictNormal, res.Verdict)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, ErrKindThreshold, ErrorKind(&InvalidThresholdError{Threshold: 3}))
	assert.Equal(t, ErrKindMissing, ErrorKind(fmt.Errorf("wrapped: %w", &MissingFeatureError{Name: "V1"})))
	assert.Equal(t, ErrKindScoring, ErrorKind(&ScoringError{Err: errors.New("x")}))
}
