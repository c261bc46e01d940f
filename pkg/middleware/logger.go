package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shashiranjanraj/sampleapp/pkg/fault"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
	"github.com/shashiranjanraj/sampleapp/pkg/reqid"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// RequestLogger opens a logger scoped to one request, tagged with the
// request_id from reqid.Middleware, and closes the scope with a summary
// line once the response is done. Wire reqid.Middleware first.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = logger.L
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := base.With("request_id", reqid.FromCtx(r.Context()))
			r = r.WithContext(logger.InjectLogger(r.Context(), reqLog))
			fault.Scope(r.Context(), reqLog)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			defer func() {
				rec := recover()
				status := rw.statusCode
				if rec != nil && !rw.written {
					// The boundary above answers a panic with a 500.
					status = http.StatusInternalServerError
				}
				reqLog.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"duration", time.Since(start).String(),
					"ip", r.RemoteAddr,
				)
				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
