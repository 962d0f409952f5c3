package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/app/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics)
	router.HandleFunc("/api/widgets/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}).Methods("GET")
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {}).Methods("GET")

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/widgets/{id:[0-9]+}", "202")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/api/widgets/1", "/api/widgets/2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusAccepted, w.Code)
	}
	assert.Equal(t, before+2, testutil.ToFloat64(counter))

	self := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200")
	selfBefore := testutil.ToFloat64(self)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, selfBefore, testutil.ToFloat64(self))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.HTTPRequestsInFlight))
}
