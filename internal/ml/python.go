package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// PythonClassifier scores rows by running the embedded inference script against
// a joblib bundle. Each call starts a fresh interpreter bounded by timeout.
type PythonClassifier struct {
	pythonPath string
	scriptPath string
	modelPath  string
	columns    []string
	timeout    time.Duration
}

type pythonPredictRequest struct {
	Columns []string  `json:"columns"`
	Row     []float64 `json:"row"`
}

type pythonPredictResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

type pythonDescribeResponse struct {
	Threshold      *float64 `json:"threshold"`
	FeatureColumns []string `json:"feature_columns"`
	Error          string   `json:"error,omitempty"`
}

func loadPythonBundle(path string, opts Options) (*Bundle, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultPythonTimeout
	}

	pythonPath := opts.PythonPath
	if pythonPath == "" {
		found, err := findPython()
		if err != nil {
			return nil, artifactErr(path, "no Python interpreter for pickled bundle", err)
		}
		pythonPath = found
	}

	scriptPath, err := writeInferenceScript()
	if err != nil {
		return nil, artifactErr(path, "cannot prepare inference script", err)
	}

	p := &PythonClassifier{
		pythonPath: pythonPath,
		scriptPath: scriptPath,
		modelPath:  path,
		timeout:    timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var desc pythonDescribeResponse
	if err := p.run(ctx, "describe", nil, &desc); err != nil {
		return nil, artifactErr(path, "cannot describe bundle", err)
	}
	if desc.Error != "" {
		return nil, artifactErr(path, "invalid bundle", errors.New(desc.Error))
	}
	if _, err := validateHeader(desc.Threshold, desc.FeatureColumns); err != nil {
		return nil, artifactErr(path, "invalid bundle", err)
	}

	p.columns = append([]string(nil), desc.FeatureColumns...)

	return &Bundle{
		Classifier:     p,
		Threshold:      *desc.Threshold,
		FeatureColumns: append([]string(nil), desc.FeatureColumns...),
	}, nil
}

// PredictProba implements Classifier.
func (p *PythonClassifier) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	if len(row) != len(p.columns) {
		return nil, fmt.Errorf("expected %d features, got %d", len(p.columns), len(row))
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var resp pythonPredictResponse
	req := pythonPredictRequest{Columns: p.columns, Row: row}
	if err := p.run(ctx, "predict", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		log.Error().
			Str("python_error", resp.Error).
			Str("model_path", p.modelPath).
			Msg("Python inference returned error")
		return nil, fmt.Errorf("python inference error: %s", resp.Error)
	}
	if len(resp.Probabilities) != 2 {
		return nil, fmt.Errorf("expected 2 probabilities, got %d", len(resp.Probabilities))
	}
	for i, prob := range resp.Probabilities {
		if math.IsNaN(prob) || prob < 0 || prob > 1 {
			return nil, fmt.Errorf("invalid probability %d: %f", i, prob)
		}
	}
	return resp.Probabilities, nil
}

// Kind implements Classifier.
func (p *PythonClassifier) Kind() string {
	return KindPython
}

// run executes one script command. A nil request sends no stdin.
func (p *PythonClassifier) run(ctx context.Context, command string, request, response any) error {
	cmd := exec.CommandContext(ctx, p.pythonPath, p.scriptPath, command, p.modelPath)
	if request != nil {
		reqJSON, err := json.Marshal(request)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		cmd.Stdin = bytes.NewReader(reqJSON)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error().
			Err(err).
			Str("command", command).
			Str("python_path", p.pythonPath).
			Str("model_path", p.modelPath).
			Str("stderr", stderr.String()).
			Dur("timeout", p.timeout).
			Bool("context_cancelled", ctx.Err() != nil).
			Msg("Python inference execution failed")

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("python %s timed out after %v", command, p.timeout)
		}
		// The script reports its own failures as JSON on stdout before exiting 1.
		if json.Unmarshal(stdout.Bytes(), response) == nil {
			return nil
		}
		return fmt.Errorf("python %s failed: %w, stderr: %s", command, err, strings.TrimSpace(stderr.String()))
	}

	if err := json.Unmarshal(stdout.Bytes(), response); err != nil {
		return fmt.Errorf("failed to parse %s response: %w, stdout: %s", command, err, stdout.String())
	}
	return nil
}

func findPython() (string, error) {
	if venvPath := os.Getenv("VIRTUAL_ENV"); venvPath != "" {
		for _, candidate := range []string{
			filepath.Join(venvPath, "bin", "python3"),
			filepath.Join(venvPath, "bin", "python"),
			filepath.Join(venvPath, "Scripts", "python.exe"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				log.Info().Str("python_path", candidate).Msg("Using virtual environment Python")
				return candidate, nil
			}
		}
	}

	for _, candidate := range []string{"python3", "python"} {
		path, err := exec.LookPath(candidate)
		if err != nil {
			continue
		}
		check := exec.Command(path, "-c", "import sys; exit(0 if sys.version_info[0] == 3 else 1)")
		if err := check.Run(); err == nil {
			log.Info().Str("python_path", path).Msg("Using system Python")
			return path, nil
		}
	}

	return "", fmt.Errorf("no suitable Python 3 executable found")
}

// Every pickled bundle load reuses this one script file.
const inferenceScriptName = "fraud_inference.py"

func writeInferenceScript() (string, error) {
	path := filepath.Join(os.TempDir(), inferenceScriptName)
	if existing, err := os.ReadFile(path); err == nil && string(existing) == inferenceScript {
		return path, nil
	}
	if err := os.WriteFile(path, []byte(inferenceScript), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

const inferenceScript = `#!/usr/bin/env python3
"""Joblib bundle inference for the fraud dashboard."""
import json
import numbers
import sys


def fail(message):
    print(json.dumps({"error": message}))
    sys.exit(1)


def main():
    if len(sys.argv) != 3 or sys.argv[1] not in ("describe", "predict"):
        fail("usage: inference.py describe|predict <bundle_path>")

    command, bundle_path = sys.argv[1], sys.argv[2]
    try:
        import joblib
        bundle = joblib.load(bundle_path)
    except Exception as e:
        fail("cannot load bundle: %s" % e)

    for key in ("model", "threshold", "feature_columns"):
        if key not in bundle:
            fail("bundle is missing field %s" % key)

    if command == "describe":
        threshold = bundle["threshold"]
        if isinstance(threshold, bool) or not isinstance(threshold, numbers.Real):
            fail("threshold must be a number, got %s" % type(threshold).__name__)
        columns = bundle["feature_columns"]
        if isinstance(columns, (str, bytes)):
            fail("feature_columns must be a list of strings, got %s" % type(columns).__name__)
        try:
            columns = list(columns)
        except TypeError:
            fail("feature_columns must be a list of strings, got %s" % type(columns).__name__)
        for c in columns:
            if not isinstance(c, str):
                fail("feature column %r is %s, not a string" % (c, type(c).__name__))
        print(json.dumps({
            "threshold": float(threshold),
            "feature_columns": columns,
        }))
        return

    try:
        import pandas as pd
        request = json.load(sys.stdin)
        frame = pd.DataFrame([request["row"]], columns=request["columns"])
        proba = bundle["model"].predict_proba(frame)[0]
        print(json.dumps({"probabilities": [float(p) for p in proba]}))
    except Exception as e:
        fail(str(e))


if __name__ == "__main__":
    main()
`
