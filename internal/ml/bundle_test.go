package ml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "testdata/fraud_bundle.json"

func writeBundle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func zeroRow(n int) []float64 {
	return make([]float64, n)
}

func TestLoadBundle_Fixture(t *testing.T) {
	bundle, err := LoadBundle(fixturePath)
	require.NoError(t, err)

	assert.Equal(t, 0.5, bundle.Threshold)
	assert.Len(t, bundle.FeatureColumns, 30)
	assert.Equal(t, "Time", bundle.FeatureColumns[0])
	assert.Equal(t, "V14", bundle.FeatureColumns[14])
	assert.Equal(t, "Amount", bundle.FeatureColumns[29])
	assert.Equal(t, KindTreeEnsemble, bundle.Kind())
	assert.Equal(t, fixturePath, bundle.Source)
	assert.False(t, bundle.LoadedAt.IsZero())

	ensemble, ok := bundle.Classifier.(*TreeEnsemble)
	require.True(t, ok)
	assert.Equal(t, 5, ensemble.NumTrees())

	proba, err := bundle.Classifier.PredictProba(context.Background(), zeroRow(30))
	require.NoError(t, err)
	require.Len(t, proba, 2)
	assert.InDelta(t, 0.06297335605699651, proba[1], 1e-12)
	assert.InDelta(t, 1, proba[0]+proba[1], 1e-12)
}

func TestLoadBundle_YAMLLogistic(t *testing.T) {
	path := writeBundle(t, "bundle.yaml", `
threshold: 0.3
feature_columns: [Time, Amount]
model:
  type: logistic
  intercept: -1
  coefficients: [0.5, -0.25]
`)

	bundle, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, KindLogistic, bundle.Kind())
	assert.Equal(t, 0.3, bundle.Threshold)
	assert.Equal(t, []string{"Time", "Amount"}, bundle.FeatureColumns)

	proba, err := bundle.Classifier.PredictProba(context.Background(), []float64{2, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.2689414213699951, proba[1], 1e-12)

	_, err = bundle.Classifier.PredictProba(context.Background(), []float64{2})
	assert.Error(t, err)
}

func TestLoadBundle_YAMLTreeEnsemble(t *testing.T) {
	path := writeBundle(t, "bundle.yml", `
threshold: 0.5
feature_columns: [a, b]
model:
  type: gbtree
  trees:
    - nodeid: 0
      split: b
      split_condition: 1.5
      yes: 1
      no: 2
      missing: 2
      children:
        - {nodeid: 1, leaf: -1}
        - {nodeid: 2, leaf: 1}
`)

	bundle, err := LoadBundle(path)
	require.NoError(t, err)

	proba, err := bundle.Classifier.PredictProba(context.Background(), []float64{0, 3})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(1), proba[1], 1e-12)

	proba, err = bundle.Classifier.PredictProba(context.Background(), []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(-1), proba[1], 1e-12)
}

func TestLoadBundle_Errors(t *testing.T) {
	const header = `"threshold": 0.5, "feature_columns": ["a", "b"]`
	const logistic = `{"type": "logistic", "intercept": 0, "coefficients": [1, 1]}`

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"missing model", "b.json", `{` + header + `}`},
		{"missing threshold", "b.json", `{"feature_columns": ["a", "b"], "model": ` + logistic + `}`},
		{"missing feature_columns", "b.json", `{"threshold": 0.5, "model": ` + logistic + `}`},
		{"threshold as string", "b.json", `{"threshold": "0.5", "feature_columns": ["a", "b"], "model": ` + logistic + `}`},
		{"feature_columns as string", "b.json", `{"threshold": 0.5, "feature_columns": "a,b", "model": ` + logistic + `}`},
		{"model as list", "b.json", `{` + header + `, "model": []}`},
		{"threshold above one", "b.json", `{"threshold": 1.2, "feature_columns": ["a", "b"], "model": ` + logistic + `}`},
		{"threshold below zero", "b.json", `{"threshold": -0.2, "feature_columns": ["a", "b"], "model": ` + logistic + `}`},
		{"empty columns", "b.json", `{"threshold": 0.5, "feature_columns": [], "model": ` + logistic + `}`},
		{"duplicate columns", "b.json", `{"threshold": 0.5, "feature_columns": ["a", "a"], "model": ` + logistic + `}`},
		{"blank column", "b.json", `{"threshold": 0.5, "feature_columns": ["a", " "], "model": ` + logistic + `}`},
		{"unknown top-level field", "b.json", `{` + header + `, "model": ` + logistic + `, "version": 2}`},
		{"truncated json", "b.json", `{` + header},
		{"missing model type", "b.json", `{` + header + `, "model": {"intercept": 0, "coefficients": [1, 1]}}`},
		{"unsupported model type", "b.json", `{` + header + `, "model": {"type": "svm"}}`},
		{"coefficient count", "b.json", `{` + header + `, "model": {"type": "logistic", "intercept": 0, "coefficients": [1]}}`},
		{"missing intercept", "b.json", `{` + header + `, "model": {"type": "logistic", "coefficients": [1, 1]}}`},
		{"no trees", "b.json", `{` + header + `, "model": {"type": "gbtree", "trees": []}}`},
		{"base score out of range", "b.json", `{` + header + `, "model": {"type": "gbtree", "base_score": 1, "trees": [{"nodeid": 0, "leaf": 1}]}}`},
		{"unknown split feature", "b.json", `{` + header + `, "model": {"type": "gbtree", "trees": [
			{"nodeid": 0, "split": "c", "split_condition": 1, "yes": 1, "no": 2,
			 "children": [{"nodeid": 1, "leaf": 1}, {"nodeid": 2, "leaf": 2}]}]}}`},
		{"dangling child", "b.json", `{` + header + `, "model": {"type": "gbtree", "trees": [
			{"nodeid": 0, "split": "a", "split_condition": 1, "yes": 1, "no": 3,
			 "children": [{"nodeid": 1, "leaf": 1}, {"nodeid": 2, "leaf": 2}]}]}}`},
		{"incomplete split", "b.json", `{` + header + `, "model": {"type": "gbtree", "trees": [
			{"nodeid": 0, "split": "a", "yes": 1, "no": 2,
			 "children": [{"nodeid": 1, "leaf": 1}, {"nodeid": 2, "leaf": 2}]}]}}`},
		{"node without id", "b.json", `{` + header + `, "model": {"type": "gbtree", "trees": [{"leaf": 1}]}}`},
		{"unknown yaml field", "b.yaml", "threshold: 0.5\nfeature_columns: [a]\nmodel: {type: logistic, intercept: 0, coefficients: [1]}\nowner: me\n"},
		{"yaml numeric columns", "b.yaml", "threshold: 0.5\nfeature_columns: [1, 2]\nmodel: {type: logistic, intercept: 0, coefficients: [1, 1]}\n"},
		{"yaml mixed columns", "b.yaml", "threshold: 0.5\nfeature_columns: [true, 2.5]\nmodel: {type: logistic, intercept: 0, coefficients: [1, 1]}\n"},
		{"yaml null column", "b.yml", "threshold: 0.5\nfeature_columns: [a, ~]\nmodel: {type: logistic, intercept: 0, coefficients: [1, 1]}\n"},
		{"yaml columns as string", "b.yaml", "threshold: 0.5\nfeature_columns: ab\nmodel: {type: logistic, intercept: 0, coefficients: [1, 1]}\n"},
		{"yaml columns as mapping", "b.yaml", "threshold: 0.5\nfeature_columns: {a: 1}\nmodel: {type: logistic, intercept: 0, coefficients: [1]}\n"},
		{"yaml threshold as string", "b.yaml", "threshold: \"0.5\"\nfeature_columns: [a, b]\nmodel: {type: logistic, intercept: 0, coefficients: [1, 1]}\n"},
		{"yaml missing threshold", "b.yaml", "feature_columns: [a, b]\nmodel: {type: logistic, intercept: 0, coefficients: [1, 1]}\n"},
		{"yaml missing columns", "b.yaml", "threshold: 0.5\nmodel: {type: logistic, intercept: 0, coefficients: [1, 1]}\n"},
		{"unsupported extension", "b.txt", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeBundle(t, tt.file, tt.content)

			bundle, err := LoadBundle(path)
			assert.Nil(t, bundle)

			var ae *ArtifactError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, path, ae.Path)
			assert.NotEmpty(t, ae.Reason)
		})
	}
}

func TestLoadBundle_YAMLQuotedColumns(t *testing.T) {
	path := writeBundle(t, "bundle.yaml", `
threshold: 0.5
feature_columns: ["1", "true", V3]
model:
  type: logistic
  intercept: 0
  coefficients: [1, 1, 1]
`)

	bundle, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "true", "V3"}, bundle.FeatureColumns)
}

func TestLoadBundle_PathErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadBundle(filepath.Join(dir, "missing.json"))
	var ae *ArtifactError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "file not found", ae.Reason)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = LoadBundle(dir)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "path is a directory", ae.Reason)
}

func TestArtifactError_Message(t *testing.T) {
	err := artifactErr("m.json", "malformed bundle", errors.New("unexpected EOF"))
	assert.Equal(t, "model artifact m.json: malformed bundle: unexpected EOF", err.Error())

	err = artifactErr("m.json", "path is a directory", nil)
	assert.Equal(t, "model artifact m.json: path is a directory", err.Error())
	assert.Nil(t, err.Unwrap())
}
