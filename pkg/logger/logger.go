// Package logger provides a structured, levelled logger built on log/slog.
//
// The process builds one logger at start-up with New and hands it to every
// component that needs one. Request handlers read the request-scoped logger
// the observability middleware put in the context:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product created", "sku", p.SKU)
//	// → time=... level=INFO msg="product created" request_id=a1b2c3d4 sku=X-1
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// L is the process-wide default logger. cmd replaces it once at start-up.
var L = New("local", os.Stdout)

// NewHandler picks JSON output for production and text output everywhere else.
func NewHandler(env string, w io.Writer) slog.Handler {
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// New builds a logger for the given environment.
func New(env string, w io.Writer) *slog.Logger {
	return slog.New(NewHandler(env, w))
}

// SetDefault installs l as L and as the slog default.
func SetDefault(l *slog.Logger) {
	L = l
	slog.SetDefault(l)
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or L when the
// request never passed through the observability middleware.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
