package jobmetrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposedOnPrivateRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	require.NoError(t, metrics.Track("payment_sync").End(nil))
	require.Error(t, metrics.Track("payment_sync").End(errors.New("boom")))
	metrics.AddOutcome("persisted")

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.True(t, strings.Contains(body, `bookline_jobs_total{job="payment_sync",status="success"} 1`))
	require.True(t, strings.Contains(body, `bookline_jobs_total{job="payment_sync",status="failure"} 1`))
	require.True(t, strings.Contains(body, `bookline_jobs_failures_total{job="payment_sync"} 1`))
	require.True(t, strings.Contains(body, `bookline_reconcile_outcomes_total{outcome="persisted"} 1`))
}

func TestNilMetricsTrackerIsInert(t *testing.T) {
	var metrics *Metrics

	err := errors.New("boom")
	require.ErrorIs(t, metrics.Track("sweep").End(err), err)
	metrics.AddOutcome("unchanged")
}
