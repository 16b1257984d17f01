package common

// Environment variable keys
const (
	EnvConfigFile        = "CONFIG_FILE"
	EnvModelPath         = "MODEL_PATH"
	EnvDecisionThreshold = "DECISION_THRESHOLD"
	EnvPythonPath        = "PYTHON_PATH"
	EnvInferenceTimeout  = "INFERENCE_TIMEOUT"
	EnvDashboardPort     = "DASHBOARD_PORT"
	EnvShutdownTimeout   = "SHUTDOWN_TIMEOUT"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogFormat         = "LOG_FORMAT"
	EnvServerURL         = "FRAUD_SERVER_URL"
)

// Defaults
const (
	DefaultModelPath     = "models/fraud_bundle.json"
	DefaultDashboardPort = 8501
	DefaultLogLevel      = "info"
)

// Log formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Feature columns used by the simplified entry mode and the presets.
const (
	FeatureTime   = "Time"
	FeatureAmount = "Amount"
)
