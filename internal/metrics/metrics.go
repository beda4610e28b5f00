package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
)

// Metrics holds the Prometheus instruments for signal runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec // labels: outcome
	RunErrorsTotal     prometheus.Counter
	SignalsTotal       *prometheus.CounterVec // labels: signal
	DuplicatesSkipped  prometheus.Counter
	FetchDuration      prometheus.Histogram
	WriteFailuresTotal *prometheus.CounterVec // labels: writer
	LastRSI            prometheus.Gauge
	LastRunTimestamp   prometheus.Gauge

	registry *prometheus.Registry
	health   *HealthStatus
}

// NewMetrics creates the instruments on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candlesignals_runs_total",
			Help: "Completed runs by outcome",
		}, []string{"outcome"}),
		RunErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlesignals_run_errors_total",
			Help: "Runs that ended with an error",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candlesignals_signals_total",
			Help: "Payloads produced by signal side",
		}, []string{"signal"}),
		DuplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candlesignals_duplicates_skipped_total",
			Help: "Payloads not written because the journal already held them",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "candlesignals_fetch_duration_seconds",
			Help:    "Kline fetch latency including retries",
			Buckets: prometheus.DefBuckets,
		}),
		WriteFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candlesignals_write_failures_total",
			Help: "Rows a writer failed to persist after retries",
		}, []string{"writer"}),
		LastRSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "candlesignals_last_rsi",
			Help: "RSI of the last produced payload",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "candlesignals_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run",
		}),
		registry: prometheus.NewRegistry(),
		health:   NewHealthStatus(),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.RunErrorsTotal,
		m.SignalsTotal,
		m.DuplicatesSkipped,
		m.FetchDuration,
		m.WriteFailuresTotal,
		m.LastRSI,
		m.LastRunTimestamp,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Health returns the health status fed by ObserveRun.
func (m *Metrics) Health() *HealthStatus { return m.health }

// ObserveFetch records one fetch attempt sequence.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// ObserveRun records the result of a finished run.
func (m *Metrics) ObserveRun(at time.Time, res domain.Result, err error) {
	if m == nil {
		return
	}
	m.LastRunTimestamp.Set(float64(at.Unix()))
	m.health.recordRun(at, res.Outcome, err)
	if err != nil {
		m.RunErrorsTotal.Inc()
		return
	}
	m.RunsTotal.WithLabelValues(res.Outcome.String()).Inc()
	if res.HasPayload() {
		m.SignalsTotal.WithLabelValues(string(res.Payload.Signal)).Inc()
		m.LastRSI.Set(res.Payload.RSI)
	}
}

// ObserveDuplicate counts a payload suppressed by the journal.
func (m *Metrics) ObserveDuplicate() {
	if m == nil {
		return
	}
	m.DuplicatesSkipped.Inc()
}

// ObserveWriteFailure counts a writer that gave up on a row.
func (m *Metrics) ObserveWriteFailure(writer string) {
	if m == nil {
		return
	}
	m.WriteFailuresTotal.WithLabelValues(writer).Inc()
}

// HealthStatus represents the outcome of the most recent run.
type HealthStatus struct {
	mu sync.RWMutex

	LastRunAt     time.Time
	LastOutcome   string
	LastError     string
	LastSuccessAt time.Time
	StartedAt     time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) recordRun(at time.Time, outcome domain.Outcome, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastRunAt = at
	if err != nil {
		h.LastOutcome = "error"
		h.LastError = err.Error()
		return
	}
	h.LastOutcome = outcome.String()
	h.LastError = ""
	h.LastSuccessAt = at
}

// ServeHTTP handles the /healthz endpoint. The last run failing reports 503.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := struct {
		Status        string `json:"status"`
		Uptime        string `json:"uptime"`
		LastRunAt     string `json:"last_run_at,omitempty"`
		LastOutcome   string `json:"last_outcome,omitempty"`
		LastError     string `json:"last_error,omitempty"`
		LastSuccessAt string `json:"last_success_at,omitempty"`
	}{
		Status:      "healthy",
		Uptime:      time.Since(h.StartedAt).Round(time.Second).String(),
		LastOutcome: h.LastOutcome,
		LastError:   h.LastError,
	}
	if !h.LastRunAt.IsZero() {
		status.LastRunAt = h.LastRunAt.UTC().Format(time.RFC3339)
	}
	if !h.LastSuccessAt.IsZero() {
		status.LastSuccessAt = h.LastSuccessAt.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.LastError != "" {
		status.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr   string
	srv    *http.Server
	logger ports.Logger
}

// NewServer creates a metrics and health server for m.
func NewServer(addr string, m *Metrics, logger ports.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", m.health)

	return &Server{
		addr:   addr,
		logger: logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info(context.Background(), "Metrics server listening", ports.Fields{"addr": s.addr})
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), err, "Metrics server error")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
