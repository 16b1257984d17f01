package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fraud-dashboard/internal/client"
	"fraud-dashboard/internal/common"
	"fraud-dashboard/internal/decision"
	"fraud-dashboard/internal/features"
	"fraud-dashboard/internal/ml"
	"fraud-dashboard/internal/presets"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `Usage:
  fraudctl inspect -model PATH
  fraudctl score (-model PATH | -server URL) [-preset NAME] [-threshold T] [-set name=value ...] [-json]
`

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "inspect":
		err = runInspect(os.Args[2:])
	case "score":
		err = runScore(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg(os.Args[1] + " failed")
	}
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	modelPath := fs.String("model", common.DefaultModelPath, "Path to model bundle")
	pythonPath := fs.String("python", os.Getenv(common.EnvPythonPath), "Python interpreter for pickled bundles")
	fs.Parse(args)

	bundle, err := ml.LoadBundleWithOptions(*modelPath, ml.Options{PythonPath: *pythonPath})
	if err != nil {
		return err
	}

	fmt.Printf("Source:    %s\n", bundle.Source)
	fmt.Printf("Kind:      %s\n", bundle.Kind())
	fmt.Printf("Threshold: %.4f\n", bundle.Threshold)
	fmt.Printf("Features:  %d\n", len(bundle.FeatureColumns))
	fmt.Printf("  %s\n", strings.Join(bundle.FeatureColumns, ", "))
	if e, ok := bundle.Classifier.(*ml.TreeEnsemble); ok {
		fmt.Printf("Trees:     %d\n", e.NumTrees())
	}
	return nil
}

func runScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	modelPath := fs.String("model", common.DefaultModelPath, "Path to model bundle (local scoring)")
	serverURL := fs.String("server", os.Getenv(common.EnvServerURL), "Dashboard URL (remote scoring)")
	preset := fs.String("preset", presets.Zero, "Starting example: "+strings.Join(presets.Names(), ", "))
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	timeout := fs.Duration("timeout", 10*time.Second, "Overall timeout")
	var threshold optionalFloat
	fs.Var(&threshold, "threshold", "Decision threshold (defaults to the bundle's)")
	overrides := assignments{}
	fs.Var(overrides, "set", "Feature override name=value, repeatable")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var res decision.Result
	var err error
	if *serverURL != "" {
		res, err = scoreRemote(ctx, *serverURL, *preset, threshold, overrides)
	} else {
		res, err = scoreLocal(ctx, *modelPath, *preset, threshold, overrides)
	}
	if err != nil {
		return err
	}

	if *asJSON {
		return json.NewEncoder(os.Stdout).Encode(res)
	}
	fmt.Printf("Fraud probability: %.4f\n", res.Probability)
	fmt.Printf("Threshold:         %.2f\n", res.Threshold)
	fmt.Printf("Verdict:           %s\n", res.Verdict)
	return nil
}

func scoreLocal(ctx context.Context, modelPath, preset string, threshold optionalFloat, overrides assignments) (decision.Result, error) {
	bundle, err := ml.LoadBundleWithOptions(modelPath, ml.Options{PythonPath: os.Getenv(common.EnvPythonPath)})
	if err != nil {
		return decision.Result{}, err
	}

	v, err := presets.Build(preset, bundle.FeatureColumns)
	if err != nil {
		return decision.Result{}, err
	}
	v.Merge(features.Vector(overrides))

	t := bundle.Threshold
	if threshold.set {
		t = threshold.value
	}
	return decision.Evaluate(ctx, bundle, v, t)
}

func scoreRemote(ctx context.Context, serverURL, preset string, threshold optionalFloat, overrides assignments) (decision.Result, error) {
	c := client.New(serverURL, 0)

	v, err := c.Preset(ctx, preset)
	if err != nil {
		return decision.Result{}, err
	}
	v.Merge(features.Vector(overrides))

	var t *float64
	if threshold.set {
		t = &threshold.value
	}
	resp, err := c.Evaluate(ctx, v, t)
	if err != nil {
		return decision.Result{}, err
	}
	log.Debug().Str("request_id", resp.RequestID).Msg("Scored remotely")
	return resp.Result, nil
}

// optionalFloat distinguishes an unset flag from an explicit zero.
type optionalFloat struct {
	value float64
	set   bool
}

func (f *optionalFloat) String() string {
	if !f.set {
		return ""
	}
	return strconv.FormatFloat(f.value, 'g', -1, 64)
}

func (f *optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

// assignments collects repeated -set name=value flags.
type assignments features.Vector

func (a assignments) String() string {
	parts := make([]string, 0, len(a))
	for _, name := range features.Vector(a).Names() {
		parts = append(parts, fmt.Sprintf("%s=%g", name, a[name]))
	}
	return strings.Join(parts, ",")
}

func (a assignments) Set(s string) error {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("feature %s: %w", name, err)
	}
	a[name] = v
	return nil
}
