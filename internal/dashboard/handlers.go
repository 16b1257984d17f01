package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fraud-dashboard/internal/api"
	"fraud-dashboard/internal/decision"
	"fraud-dashboard/internal/presets"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const maxRequestBytes = 1 << 20

func (d *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"model_kind": d.evaluator.Bundle().Kind(),
	})
}

func (d *Dashboard) handleModel(w http.ResponseWriter, r *http.Request) {
	d.countRequest("model")

	bundle := d.evaluator.Bundle()
	writeJSON(w, http.StatusOK, api.ModelInfo{
		Kind:             bundle.Kind(),
		Source:           bundle.Source,
		FeatureColumns:   bundle.FeatureColumns,
		DefaultThreshold: bundle.Threshold,
		LoadedAt:         bundle.LoadedAt,
	})
}

func (d *Dashboard) handlePresets(w http.ResponseWriter, r *http.Request) {
	d.countRequest("presets")
	writeJSON(w, http.StatusOK, api.PresetList{Presets: presets.Names()})
}

func (d *Dashboard) handlePreset(w http.ResponseWriter, r *http.Request) {
	d.countRequest("preset")

	name := mux.Vars(r)["name"]
	v, err := presets.Build(name, d.evaluator.Bundle().FeatureColumns)
	if err != nil {
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: err.Error(), Kind: "unknown_preset"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (d *Dashboard) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	d.countRequest("evaluate")

	var req api.EvaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
			Error: fmt.Sprintf("invalid request: %v", err),
			Kind:  "bad_request",
		})
		return
	}

	threshold := d.evaluator.DefaultThreshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	res, err := d.evaluator.Evaluate(r.Context(), req.Features, threshold)
	if err != nil {
		status := http.StatusBadRequest
		var se *decision.ScoringError
		if errors.As(err, &se) {
			status = http.StatusBadGateway
		}
		log.Warn().Err(err).Str("request_id", requestID).Int("status", status).Msg("Evaluate request failed")
		writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Kind: decision.ErrorKind(err)})
		return
	}

	writeJSON(w, http.StatusOK, api.EvaluateResponse{Result: res, RequestID: requestID})
}

func (d *Dashboard) countRequest(route string) {
	if d.metrics != nil {
		d.metrics.APIRequestInc(route)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
