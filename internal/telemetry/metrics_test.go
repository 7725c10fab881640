package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPublishAndTransfer(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordPublish(OutcomeSuccess)
	m.RecordPublish(OutcomeSuccess)
	m.RecordPublish(OutcomeRejected)
	m.RecordTransfer(OutcomeError)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.publishesTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.publishesTotal.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.transfersTotal.WithLabelValues(OutcomeError)))
}

func TestNilMetricsAreNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordPublish(OutcomeSuccess)
	m.RecordTransfer(OutcomeSuccess)
}

func TestHTTPMiddlewareRecordsRoutePattern(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/api/v0/packages/{name}/owner", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v0/packages/safe-math-lib/owner", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	count := testutil.CollectAndCount(m.requestDuration)
	assert.Equal(t, 1, count)
}
