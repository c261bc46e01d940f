package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shashiranjanraj/sampleapp/pkg/metrics"
	"github.com/shashiranjanraj/sampleapp/pkg/router"
)

func routed(handler http.HandlerFunc) http.Handler {
	r := router.New()
	r.Get("/brew", "brew", handler)
	r.Get("/api/products/{id}", "products.show", handler)
	return metrics.Middleware()(r.Handler())
}

func TestMiddlewareCountsRequests(t *testing.T) {
	h := routed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "/brew", "418"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))
	after := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "/brew", "418"))

	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, grew by %v", after-before)
	}
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	h := routed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	series := testutil.CollectAndCount(metrics.RequestTotal)
	for _, path := range []string{"/api/products/1", "/api/products/2", "/api/products/3"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, path, nil))
	}
	for _, path := range []string{"/wp-admin", "/.env", "/x/y/z"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, path, nil))
	}

	// PUT has no route, so ids and scans collapse onto the unmatched label.
	if got := testutil.CollectAndCount(metrics.RequestTotal) - series; got > 2 {
		t.Errorf("expected at most 2 new series, got %d", got)
	}

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "/api/products/{id}", "200"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/10", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/11", nil))
	after := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "/api/products/{id}", "200"))

	if after-before != 2 {
		t.Errorf("expected both ids on the pattern series, grew by %v", after-before)
	}
}

func TestMiddlewareRecordsPanicsAs500(t *testing.T) {
	h := routed(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "/brew", "500"))
	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected the panic to reach the caller")
			}
		}()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))
	}()
	after := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "/brew", "500"))

	if after-before != 1 {
		t.Errorf("expected a 500 observation, grew by %v", after-before)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	metrics.ObserveStage("transport", 0)

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "sampleapp_bootstrap_stage_duration_seconds") {
		t.Errorf("stage gauge missing from /metrics output")
	}
}
