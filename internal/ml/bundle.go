package ml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Bundle is a loaded model artifact: a fitted classifier, its default decision
// threshold and the ordered feature columns it was trained on. A Bundle is
// immutable once returned by LoadBundle and is safe to share between goroutines.
type Bundle struct {
	Classifier     Classifier
	Threshold      float64
	FeatureColumns []string
	Source         string
	LoadedAt       time.Time
}

// Kind reports the classifier family backing the bundle.
func (b *Bundle) Kind() string {
	if b == nil || b.Classifier == nil {
		return ""
	}
	return b.Classifier.Kind()
}

// Options tunes how external (pickled) bundles are loaded. Native bundles ignore it.
type Options struct {
	PythonPath string
	Timeout    time.Duration
}

const defaultPythonTimeout = 5 * time.Second

// bundleFile mirrors the on-disk layout of a native bundle. Pointer fields let the
// decoder distinguish an absent field from a zero value.
type bundleFile struct {
	Threshold      *float64   `json:"threshold" yaml:"threshold"`
	FeatureColumns columnList `json:"feature_columns" yaml:"feature_columns"`
	Model          *modelSpec `json:"model" yaml:"model"`
}

// columnList accepts only string YAML scalars; yaml.v3 alone decodes
// feature_columns: [1, true] as "1", "true".
type columnList []string

func (c *columnList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: feature_columns must be a list of strings", value.Line)
	}
	columns := make([]string, 0, len(value.Content))
	for _, n := range value.Content {
		if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
			return fmt.Errorf("line %d: feature column %q is %s, not a string", n.Line, n.Value, n.ShortTag())
		}
		columns = append(columns, n.Value)
	}
	*c = columns
	return nil
}

type modelSpec struct {
	Type string `json:"type" yaml:"type"`

	// gbtree
	BaseScore *float64   `json:"base_score,omitempty" yaml:"base_score,omitempty"`
	Trees     []treeNode `json:"trees,omitempty" yaml:"trees,omitempty"`

	// logistic
	Intercept    *float64  `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
}

// LoadBundle loads a model bundle from path using default options.
func LoadBundle(path string) (*Bundle, error) {
	return LoadBundleWithOptions(path, Options{})
}

// LoadBundleWithOptions loads a model bundle from path. The format is chosen by
// file extension: .json, .yaml/.yml for native bundles and .pkl/.joblib for
// bundles scored through Python. Every failure is an *ArtifactError.
func LoadBundleWithOptions(path string, opts Options) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, artifactErr(path, "file not found", err)
		}
		return nil, artifactErr(path, "file unreadable", err)
	}
	if info.IsDir() {
		return nil, artifactErr(path, "path is a directory", nil)
	}

	var bundle *Bundle
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".yaml", ".yml":
		bundle, err = loadNativeBundle(path, ext)
	case ".pkl", ".joblib":
		bundle, err = loadPythonBundle(path, opts)
	default:
		return nil, artifactErr(path, fmt.Sprintf("unsupported artifact extension %q", ext), nil)
	}
	if err != nil {
		return nil, err
	}

	bundle.Source = path
	bundle.LoadedAt = time.Now()

	log.Info().
		Str("model_path", path).
		Str("kind", bundle.Kind()).
		Int("features", len(bundle.FeatureColumns)).
		Float64("threshold", bundle.Threshold).
		Msg("Model bundle loaded")

	return bundle, nil
}

func loadNativeBundle(path, ext string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, artifactErr(path, "file unreadable", err)
	}

	var file bundleFile
	if ext == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&file)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&file)
	}
	if err != nil {
		return nil, artifactErr(path, "malformed bundle", err)
	}

	columns := []string(file.FeatureColumns)
	index, err := validateHeader(file.Threshold, columns)
	if err != nil {
		return nil, artifactErr(path, "invalid bundle", err)
	}
	if file.Model == nil {
		return nil, artifactErr(path, "invalid bundle", fmt.Errorf("missing field model"))
	}

	classifier, err := buildClassifier(file.Model, columns, index)
	if err != nil {
		return nil, artifactErr(path, "invalid model", err)
	}

	return &Bundle{
		Classifier:     classifier,
		Threshold:      *file.Threshold,
		FeatureColumns: append([]string(nil), columns...),
	}, nil
}

// validateHeader checks the threshold and feature columns shared by every bundle
// format and returns the column name to position index.
func validateHeader(threshold *float64, columns []string) (map[string]int, error) {
	if threshold == nil {
		return nil, fmt.Errorf("missing field threshold")
	}
	if math.IsNaN(*threshold) || *threshold < 0 || *threshold > 1 {
		return nil, fmt.Errorf("threshold must be within [0, 1], got %v", *threshold)
	}
	if columns == nil {
		return nil, fmt.Errorf("missing field feature_columns")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("feature_columns is empty")
	}

	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("feature column %d is blank", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate feature column %q", name)
		}
		index[name] = i
	}
	return index, nil
}

func buildClassifier(spec *modelSpec, columns []string, index map[string]int) (Classifier, error) {
	switch spec.Type {
	case KindTreeEnsemble:
		return newTreeEnsemble(spec, index)
	case KindLogistic:
		return newLogistic(spec, len(columns))
	case "":
		return nil, fmt.Errorf("missing field model.type")
	default:
		return nil, fmt.Errorf("unsupported model type %q", spec.Type)
	}
}
