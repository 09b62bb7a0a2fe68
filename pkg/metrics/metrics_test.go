package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCollector("clinicdesk", reg)

	m.TicketsIssued.Inc()
	m.TicketsIssued.Inc()
	m.QueueDepth.Set(2)
	m.DocumentWrites.WithLabelValues("patients", "ok").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TicketsIssued))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentWrites.WithLabelValues("patients", "ok")))
}

func TestCollectorRegistersOncePerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector("clinicdesk", reg)

	assert.Panics(t, func() { NewCollector("clinicdesk", reg) })
	assert.NotPanics(t, func() { NewCollector("clinicdesk", prometheus.NewRegistry()) })
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCollector("clinicdesk", reg)
	m.PatientsRegistered.Inc()

	rec := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clinicdesk_clinical_patients_registered_total 1")
}
