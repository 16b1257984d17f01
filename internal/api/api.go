// Package api defines the JSON bodies exchanged between the dashboard server and
// its clients.
package api

import (
	"time"

	"fraud-dashboard/internal/decision"
	"fraud-dashboard/internal/features"
	"fraud-dashboard/internal/session"
)

type EvaluateRequest struct {
	Features  features.Vector `json:"features"`
	Threshold *float64        `json:"threshold,omitempty"`
}

type EvaluateResponse struct {
	decision.Result
	RequestID string `json:"request_id"`
}

type ModelInfo struct {
	Kind             string    `json:"kind"`
	Source           string    `json:"source"`
	FeatureColumns   []string  `json:"feature_columns"`
	DefaultThreshold float64   `json:"default_threshold"`
	LoadedAt         time.Time `json:"loaded_at"`
}

type PresetList struct {
	Presets []string `json:"presets"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// SessionMessage is the server's reply to every websocket action.
type SessionMessage struct {
	State    session.Snapshot `json:"state"`
	Decision *decision.Result `json:"decision,omitempty"`
	Error    string           `json:"error,omitempty"`
}
