// Package ml loads pre-trained fraud classifiers and the bundle metadata that
// travels with them: the default decision threshold and the ordered feature
// columns the classifier expects.
//
// Native bundles (JSON or YAML) are scored in-process by a gradient-boosted tree
// ensemble or a logistic model. Pickled scikit-learn/XGBoost bundles are scored
// through an external Python interpreter.
package ml

import "context"

// Classifier scores one row of features laid out in the bundle's column order.
// Implementations must be safe for concurrent use once constructed.
type Classifier interface {
	// PredictProba returns per-class probabilities for the row; index 1 is the
	// positive (fraud) class.
	PredictProba(ctx context.Context, row []float64) ([]float64, error)

	// Kind names the classifier family, e.g. "gbtree".
	Kind() string
}

const (
	KindTreeEnsemble = "gbtree"
	KindLogistic     = "logistic"
	KindPython       = "python"
)
