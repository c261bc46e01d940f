// Package metrics provides Prometheus instrumentation for the API.
//
// The observability binder wires it up:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shashiranjanraj/sampleapp/pkg/router"
)

// Unmatched labels requests no route served, so scans of random URLs share
// one series.
const Unmatched = "unmatched"

const namespace = "sampleapp"

var (
	// RequestDuration tracks how long each HTTP request takes.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits.",
		},
		[]string{"driver"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses.",
		},
		[]string{"driver"},
	)

	// StageDuration records how long each bring-up stage took.
	StageDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each bring-up stage.",
		},
		[]string{"stage"},
	)
)

// DefaultRegistry holds every collector this service exposes.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		DBQueryDuration,
		CacheHits,
		CacheMisses,
		StageDuration,
	)
}

// responseRecorder captures the status code written downstream.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.written {
		r.status = code
		r.written = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.written = true
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Middleware records duration, count and in-flight gauge for every request.
// The path label is the matched route pattern, never the raw URL.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, pattern := router.TrackPattern(r.Context())

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				rec := recover()
				status := rr.status
				if rec != nil && !rr.written {
					status = http.StatusInternalServerError
				}
				path := pattern()
				if path == "" {
					path = Unmatched
				}
				code := strconv.Itoa(status)
				RequestDuration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
				RequestTotal.WithLabelValues(r.Method, path, code).Inc()
				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(rr, r.WithContext(ctx))
		})
	}
}

// Handler exposes DefaultRegistry in the Prometheus text and OpenMetrics formats.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

// ObserveDBQuery records a DB query duration:
//
//	defer metrics.ObserveDBQuery("select", time.Now())
func ObserveDBQuery(operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveStage records the wall time of one bring-up stage.
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Set(d.Seconds())
}
