package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"fraud-dashboard/internal/cfg"
	"fraud-dashboard/internal/common"
	"fraud-dashboard/internal/dashboard"
	"fraud-dashboard/internal/decision"
	"fraud-dashboard/internal/metrics"
	"fraud-dashboard/internal/ml"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		modelPath = flag.String("model", "", "Path to model bundle (overrides config)")
		port      = flag.Int("port", 0, "Dashboard port (overrides config)")
	)
	flag.Parse()

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *modelPath != "" {
		c.ModelPath = *modelPath
	}
	if *port != 0 {
		c.Port = *port
	}

	setupLogging(c)

	bundle, err := ml.LoadBundleWithOptions(c.ModelPath, ml.Options{
		PythonPath: c.PythonPath,
		Timeout:    c.InferenceTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Str("model_path", c.ModelPath).Msg("Failed to load model bundle")
	}
	if c.ThresholdOverride != nil {
		log.Info().
			Float64("bundle_threshold", bundle.Threshold).
			Float64("override", *c.ThresholdOverride).
			Msg("Overriding default decision threshold")
		bundle.Threshold = *c.ThresholdOverride
	}

	m := metrics.New()
	mw := metrics.NewWrapper(m)
	mw.SetModel(bundle.Kind(), bundle.Source, len(bundle.FeatureColumns))

	evaluator := decision.NewEvaluator(bundle, mw)
	dash := dashboard.New(evaluator, mw, c.Port)
	if err := dash.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start dashboard")
	}

	waitForShutdown(dash, c)
}

func setupLogging(c cfg.Settings) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.LogFormat == common.LogFormatConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func waitForShutdown(dash *dashboard.Dashboard, c cfg.Settings) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	if err := dash.Stop(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	}
}
