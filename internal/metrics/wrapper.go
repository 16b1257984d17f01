package metrics

// MetricsWrapper adapts Metrics to the narrow interfaces consumed by the
// decision and dashboard packages.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) EvaluationsInc(verdict string) {
	w.m.EvaluationsTotal.WithLabelValues(verdict).Inc()
}

func (w *MetricsWrapper) EvaluationErrorsInc(kind string) {
	w.m.EvaluationErrors.WithLabelValues(kind).Inc()
	w.m.ErrorsTotal.Inc()
}

func (w *MetricsWrapper) EvaluationLatencyObserve(v float64) {
	w.m.EvaluationLatency.Observe(v)
}

func (w *MetricsWrapper) ProbabilityObserve(v float64) {
	w.m.ProbabilityScores.Observe(v)
}

func (w *MetricsWrapper) SessionOpened() {
	w.m.ActiveSessions.Inc()
}

func (w *MetricsWrapper) SessionClosed() {
	w.m.ActiveSessions.Dec()
}

func (w *MetricsWrapper) APIRequestInc(route string) {
	w.m.APIRequests.WithLabelValues(route).Inc()
}

func (w *MetricsWrapper) ErrorsInc() {
	w.m.ErrorsTotal.Inc()
}

// SetModel publishes the loaded bundle's identity.
func (w *MetricsWrapper) SetModel(kind, source string, features int) {
	w.m.ModelInfo.Reset()
	w.m.ModelInfo.WithLabelValues(kind, source).Set(1)
	w.m.ModelFeatures.Set(float64(features))
}
