// Package dashboard serves the interactive fraud scoring dashboard: an HTML page
// driven over a websocket (one message per user interaction), a JSON API for
// single-transaction scoring, and health and Prometheus endpoints.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"fraud-dashboard/internal/decision"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// MetricsInterface defines metrics methods needed by the dashboard
type MetricsInterface interface {
	SessionOpened()
	SessionClosed()
	APIRequestInc(route string)
	ErrorsInc()
}

// Dashboard owns the HTTP server and the open interactive sessions.
type Dashboard struct {
	evaluator *decision.Evaluator
	metrics   MetricsInterface
	server    *http.Server
	upgrader  websocket.Upgrader
	page      *template.Template

	clients   map[*websocket.Conn]struct{}
	clientsMu sync.Mutex

	isRunning bool
	mu        sync.Mutex
}

// New creates a dashboard listening on port once started. metrics may be nil.
func New(evaluator *decision.Evaluator, metrics MetricsInterface, port int) *Dashboard {
	d := &Dashboard{
		evaluator: evaluator,
		metrics:   metrics,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		page:      template.Must(template.New("dashboard").Parse(pageTemplate)),
		clients:   make(map[*websocket.Conn]struct{}),
	}

	d.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return d
}

// Handler returns the dashboard router.
func (d *Dashboard) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", d.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/ws", d.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/health", d.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/model", d.handleModel).Methods(http.MethodGet)
	a.HandleFunc("/presets", d.handlePresets).Methods(http.MethodGet)
	a.HandleFunc("/presets/{name}", d.handlePreset).Methods(http.MethodGet)
	a.HandleFunc("/evaluate", d.handleEvaluate).Methods(http.MethodPost)

	return r
}

// Start binds the listener and serves in the background.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	ln, err := net.Listen("tcp", d.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.server.Addr, err)
	}

	go func() {
		log.Info().
			Str("address", d.server.Addr).
			Msg("Starting fraud dashboard server")

		if err := d.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Fraud dashboard server failed")
		}
	}()

	d.isRunning = true
	return nil
}

// Stop closes every open session and shuts the server down.
func (d *Dashboard) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return nil
	}

	d.clientsMu.Lock()
	for conn := range d.clients {
		conn.Close()
	}
	d.clients = make(map[*websocket.Conn]struct{})
	d.clientsMu.Unlock()

	if err := d.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown fraud dashboard server")
		return err
	}

	d.isRunning = false
	log.Info().Msg("Fraud dashboard stopped")
	return nil
}

func (d *Dashboard) handlePage(w http.ResponseWriter, r *http.Request) {
	bundle := d.evaluator.Bundle()
	data := pageData{
		Columns:          bundle.FeatureColumns,
		DefaultThreshold: bundle.Threshold,
		ModelKind:        bundle.Kind(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.page.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render dashboard page")
	}
}
