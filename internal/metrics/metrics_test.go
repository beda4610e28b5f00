package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...ports.Fields) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...ports.Fields)  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...ports.Fields)  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...ports.Fields) {
}

func TestObserveRun(t *testing.T) {
	m := NewMetrics()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	m.ObserveRun(now, domain.Result{Outcome: domain.OutcomeNoSignal}, nil)
	m.ObserveRun(now, domain.Result{Outcome: domain.OutcomeInsufficientData}, nil)
	m.ObserveRun(now, domain.Result{
		Outcome: domain.OutcomePayload,
		Payload: &domain.Payload{Signal: domain.SignalBuy, RSI: 27.5},
	}, nil)
	m.ObserveRun(now, domain.Result{}, errors.New("fetch failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("no_signal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("insufficient_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("payload")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignalsTotal.WithLabelValues("BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunErrorsTotal))
	assert.Equal(t, 27.5, testutil.ToFloat64(m.LastRSI))
	assert.Equal(t, float64(now.Unix()), testutil.ToFloat64(m.LastRunTimestamp))
}

func TestObserveWriteFailureAndDuplicate(t *testing.T) {
	m := NewMetrics()
	m.ObserveWriteFailure("sheets")
	m.ObserveWriteFailure("sheets")
	m.ObserveDuplicate()
	m.ObserveFetch(150 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.WriteFailuresTotal.WithLabelValues("sheets")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicatesSkipped))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch(time.Second)
		m.ObserveRun(time.Now(), domain.Result{}, nil)
		m.ObserveDuplicate()
		m.ObserveWriteFailure("csv")
	})
}

func TestServer_Endpoints(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun(time.Now(), domain.Result{Outcome: domain.OutcomeNoSignal}, nil)
	srv := NewServer(":0", m, &mockLogger{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `candlesignals_runs_total{outcome="no_signal"} 1`))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "no_signal", body["last_outcome"])
}

func TestHealth_DegradedAfterError(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun(time.Now(), domain.Result{}, errors.New("sheets down"))

	rec := httptest.NewRecorder()
	m.Health().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "sheets down")

	m.ObserveRun(time.Now(), domain.Result{Outcome: domain.OutcomePayload, Payload: &domain.Payload{Signal: domain.SignalSell}}, nil)
	rec = httptest.NewRecorder()
	m.Health().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
