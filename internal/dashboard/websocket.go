package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fraud-dashboard/internal/api"
	"fraud-dashboard/internal/session"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const maxMessageBytes = 512 * 1024

// handleWebSocket runs one interactive session. Each client message is an
// action; each action gets exactly one reply carrying the updated state and, for
// "analyze", the decision.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		if d.metrics != nil {
			d.metrics.ErrorsInc()
		}
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	state := session.New(d.evaluator.Bundle())

	d.clientsMu.Lock()
	d.clients[conn] = struct{}{}
	d.clientsMu.Unlock()
	if d.metrics != nil {
		d.metrics.SessionOpened()
	}
	log.Info().Str("session_id", state.ID).Str("remote", r.RemoteAddr).Msg("Dashboard session opened")

	defer func() {
		d.clientsMu.Lock()
		delete(d.clients, conn)
		d.clientsMu.Unlock()
		if d.metrics != nil {
			d.metrics.SessionClosed()
		}
		log.Info().Str("session_id", state.ID).Msg("Dashboard session closed")
	}()

	if err := conn.WriteJSON(api.SessionMessage{State: state.Snapshot()}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				log.Warn().Str("session_id", state.ID).Int("limit", maxMessageBytes).Msg("Dashboard session message too large")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session_id", state.ID).Msg("Dashboard session dropped")
			}
			return
		}

		var action session.Action
		var reply api.SessionMessage
		if err := json.Unmarshal(data, &action); err != nil {
			reply = api.SessionMessage{State: state.Snapshot(), Error: fmt.Sprintf("invalid message: %v", err)}
		} else {
			reply = d.apply(r.Context(), state, action)
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.Warn().Err(err).Str("session_id", state.ID).Msg("Failed to send session update")
			return
		}
	}
}

func (d *Dashboard) apply(ctx context.Context, state *session.State, action session.Action) api.SessionMessage {
	analyze, err := state.Apply(action)
	if err != nil {
		return api.SessionMessage{State: state.Snapshot(), Error: err.Error()}
	}

	msg := api.SessionMessage{State: state.Snapshot()}
	if !analyze {
		return msg
	}

	res, err := d.evaluator.Evaluate(ctx, state.Vector(), state.Threshold)
	if err != nil {
		msg.Error = err.Error()
		return msg
	}

	log.Info().
		Str("session_id", state.ID).
		Float64("probability", res.Probability).
		Float64("threshold", res.Threshold).
		Str("verdict", string(res.Verdict)).
		Msg("Session transaction analyzed")

	msg.Decision = &res
	return msg
}
