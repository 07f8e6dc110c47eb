package observability

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

func TestHandlerExposesDomainCollectors(t *testing.T) {
	metrics := NewMetrics()
	forced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalogdesk_session_forced_logout_total",
		Help: "test",
	})
	metrics.Registerer().MustRegister(forced)
	forced.Inc()

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "catalogdesk_session_forced_logout_total 1")
	assert.Contains(t, body, "go_goroutines")
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	metrics := NewMetrics()
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
		require.Equal(t, http.StatusTeapot, rr.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(http.MethodGet, "/products/{id}", "418")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.requestDuration, "catalogdesk_http_request_duration_seconds"))
}

func TestMiddlewareKeepsFirstStatus(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(http.MethodPost, "unmatched", "201")))
}

func TestNilMetricsAreInert(t *testing.T) {
	var metrics *Metrics
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, metrics.Middleware(next))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
