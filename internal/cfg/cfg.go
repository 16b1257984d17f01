package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"fraud-dashboard/internal/common"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ModelPath         string
	ThresholdOverride *float64
	PythonPath        string
	InferenceTimeout  time.Duration
	Port              int
	ShutdownTimeout   time.Duration
	LogLevel          string
	LogFormat         string
}

type ConfigFile struct {
	Model struct {
		Path             string   `yaml:"path"`
		Threshold        *float64 `yaml:"threshold"`
		PythonPath       string   `yaml:"pythonPath"`
		InferenceTimeout string   `yaml:"inferenceTimeout"`
	} `yaml:"model"`

	Server struct {
		Port            int    `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	inferenceTimeout, err := time.ParseDuration(config.Model.InferenceTimeout)
	if err != nil {
		inferenceTimeout = 5 * time.Second
	}

	shutdownTimeout, err := time.ParseDuration(config.Server.ShutdownTimeout)
	if err != nil {
		shutdownTimeout = 5 * time.Second
	}

	threshold, err := getThresholdFromEnvOrConfig(config.Model.Threshold)
	if err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	settings := Settings{
		ModelPath:         getEnvOrDefault(common.EnvModelPath, orDefault(config.Model.Path, common.DefaultModelPath)),
		ThresholdOverride: threshold,
		PythonPath:        getEnvOrDefault(common.EnvPythonPath, config.Model.PythonPath),
		InferenceTimeout:  getDurationOrDefault(common.EnvInferenceTimeout, inferenceTimeout),
		Port:              getIntFromEnvOrConfig(common.EnvDashboardPort, config.Server.Port, common.DefaultDashboardPort),
		ShutdownTimeout:   getDurationOrDefault(common.EnvShutdownTimeout, shutdownTimeout),
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, orDefault(config.Logging.Level, common.DefaultLogLevel)),
		LogFormat:         getEnvOrDefault(common.EnvLogFormat, orDefault(config.Logging.Format, common.LogFormatConsole)),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	threshold, err := getThresholdFromEnvOrConfig(nil)
	if err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	settings := Settings{
		ModelPath:         getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		ThresholdOverride: threshold,
		PythonPath:        os.Getenv(common.EnvPythonPath), // optional
		InferenceTimeout:  getDurationOrDefault(common.EnvInferenceTimeout, 5*time.Second),
		Port:              getIntOrDefault(common.EnvDashboardPort, common.DefaultDashboardPort),
		ShutdownTimeout:   getDurationOrDefault(common.EnvShutdownTimeout, 5*time.Second),
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:         getEnvOrDefault(common.EnvLogFormat, common.LogFormatConsole),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// getThresholdFromEnvOrConfig returns nil when no override is configured, in
// which case the bundle's own threshold applies. An unparsable env value is an
// error rather than a silent fallback to the bundle default.
func getThresholdFromEnvOrConfig(configValue *float64) (*float64, error) {
	if env := os.Getenv(common.EnvDecisionThreshold); env != "" {
		val, err := strconv.ParseFloat(env, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", common.EnvDecisionThreshold, env, err)
		}
		return &val, nil
	}
	return configValue, nil
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}

	if t := settings.ThresholdOverride; t != nil && !(*t >= 0 && *t <= 1) {
		return fmt.Errorf("decision threshold must be between 0 and 1, got %f", *t)
	}

	if settings.InferenceTimeout < 100*time.Millisecond || settings.InferenceTimeout > time.Minute {
		return fmt.Errorf("inference timeout must be between 100ms and 1m, got %v", settings.InferenceTimeout)
	}
	if settings.ShutdownTimeout < time.Second || settings.ShutdownTimeout > time.Minute {
		return fmt.Errorf("shutdown timeout must be between 1s and 1m, got %v", settings.ShutdownTimeout)
	}

	if settings.Port < 1024 || settings.Port > 65535 {
		return fmt.Errorf("dashboard port must be between 1024 and 65535, got %d", settings.Port)
	}

	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	if settings.LogFormat != common.LogFormatConsole && settings.LogFormat != common.LogFormatJSON {
		return fmt.Errorf("log format must be %q or %q, got %q", common.LogFormatConsole, common.LogFormatJSON, settings.LogFormat)
	}

	return nil
}
