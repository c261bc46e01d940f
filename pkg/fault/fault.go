// Package fault is the request-time error boundary.
//
// Middleware and handlers never write error responses themselves. They hand
// the error to Pass and return:
//
//	if err != nil {
//	    fault.Pass(w, r, fault.BadRequest("invalid product id"))
//	    return
//	}
//
// Boundary installs the Handler for the request and also converts panics
// into errors, so the process keeps serving after a handler blows up.
package fault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shashiranjanraj/sampleapp/pkg/logger"
	"github.com/shashiranjanraj/sampleapp/pkg/response"
)

// Handler turns an unhandled error into a terminal HTTP response.
type Handler interface {
	Handle(err error, w http.ResponseWriter, r *http.Request)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(err error, w http.ResponseWriter, r *http.Request)

func (f HandlerFunc) Handle(err error, w http.ResponseWriter, r *http.Request) { f(err, w, r) }

// HTTPError carries the status a client should see.
type HTTPError struct {
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func New(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func Wrap(status int, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *HTTPError   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *HTTPError { return New(http.StatusUnauthorized, message) }
func NotFound(message string) *HTTPError     { return New(http.StatusNotFound, message) }

// Validation reports field-level failures as a 422.
func Validation(fields map[string]string) *HTTPError {
	return &HTTPError{Status: http.StatusUnprocessableEntity, Message: "Validation failed", Fields: fields}
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Classify maps err to the status and message a client should see.
// Anything unrecognised is a 500 with no internal detail.
func Classify(err error) (int, string) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, httpErr.Message
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("request body too large (max %d bytes)", tooLarge.Limit)
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// JSONHandler writes errors as the standard JSON envelope and logs them on
// the request-scoped logger.
type JSONHandler struct{}

func (JSONHandler) Handle(err error, w http.ResponseWriter, r *http.Request) {
	status, message := Classify(err)
	log := logger.WithCtx(r.Context())

	var panicErr *PanicError
	switch {
	case errors.As(err, &panicErr):
		log.Error("panic recovered",
			"error", panicErr.Error(),
			"stack", string(panicErr.Stack),
			"method", r.Method,
			"path", r.URL.Path,
		)
	case status >= http.StatusInternalServerError:
		log.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	default:
		log.Warn("request rejected", "status", status, "error", err, "path", r.URL.Path)
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && len(httpErr.Fields) > 0 {
		response.ValidationError(w, httpErr.Fields)
		return
	}
	response.Error(w, status, message)
}

type sinkKey struct{}

type sink struct {
	handler Handler
	log     *slog.Logger
}

// Pass hands err to the boundary installed for r. Without a boundary the
// error still becomes a response through JSONHandler.
func Pass(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	if s, ok := r.Context().Value(sinkKey{}).(*sink); ok {
		s.handler.Handle(err, w, r)
		return
	}
	JSONHandler{}.Handle(err, w, r)
}

// WithHandler makes h the destination of Pass for everything under ctx.
func WithHandler(ctx context.Context, h Handler) context.Context {
	return context.WithValue(ctx, sinkKey{}, &sink{handler: h})
}

// Scope tells the boundary above ctx to report recovered panics on log.
// Request loggers call it once they have tagged log with the request id.
func Scope(ctx context.Context, log *slog.Logger) {
	if s, ok := ctx.Value(sinkKey{}).(*sink); ok && log != nil {
		s.log = log
	}
}

// Boundary routes every error passed downstream, and every panic, to h.
// Panics are reported on log unless a request logger below has called Scope.
func Boundary(h Handler, log *slog.Logger) func(http.Handler) http.Handler {
	if h == nil {
		h = JSONHandler{}
	}
	if log == nil {
		log = logger.L
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := &sink{handler: h, log: log}
			r = r.WithContext(context.WithValue(r.Context(), sinkKey{}, s))

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				r = r.WithContext(logger.InjectLogger(r.Context(), s.log))
				h.Handle(&PanicError{Value: rec, Stack: debug.Stack()}, w, r)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
