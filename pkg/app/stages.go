package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sampleapp/pkg/fault"
	"github.com/shashiranjanraj/sampleapp/pkg/metrics"
	"github.com/shashiranjanraj/sampleapp/pkg/middleware"
	"github.com/shashiranjanraj/sampleapp/pkg/reqid"
	"github.com/shashiranjanraj/sampleapp/pkg/response"
	"github.com/shashiranjanraj/sampleapp/pkg/router"
)

// Banner is the body served at GET /.
const Banner = "SampleApp API"

// TransportConfig tunes the transport stage.
type TransportConfig struct {
	BodyLimit int64
}

// Connector opens the backing store.
type Connector interface {
	CreateConnection(ctx context.Context, sc *Context) (*gorm.DB, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, sc *Context) (*gorm.DB, error)

func (f ConnectorFunc) CreateConnection(ctx context.Context, sc *Context) (*gorm.DB, error) {
	return f(ctx, sc)
}

// ModelBuilder builds the data-access layer over an open connection.
type ModelBuilder func(ctx context.Context, db *gorm.DB) (DataAccess, error)

// RouteRegistrar mounts a route table on the router.
type RouteRegistrar func(sc *Context, r *router.Router) error

// guard runs fn as stage, turning returned errors and panics into an
// InitError and logging the failure.
func guard(log *slog.Logger, stage string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		metrics.ObserveStage(stage, time.Since(start))
		if err != nil {
			log.Error("stage failed", "stage", stage, "error", err)
			err = &InitError{Stage: stage, Err: err}
		}
	}()
	return fn()
}

// InitializeTransport creates the Context, records port, and installs body
// parsing followed by the security headers.
func InitializeTransport(port int, cfg TransportConfig, log *slog.Logger) (*Context, error) {
	sc := newContext(port, log)
	err := guard(sc.log, StageTransport, func() error {
		limit := cfg.BodyLimit
		if limit <= 0 {
			limit = middleware.DefaultBodyLimit
		}
		if err := sc.use(PipeBodyParser, middleware.BodyParser(limit)); err != nil {
			return err
		}
		if err := sc.use(PipeSecurityHeaders, middleware.SecureHeaders); err != nil {
			return err
		}

		sc.router.Get("/", "home", func(w http.ResponseWriter, _ *http.Request) {
			response.Text(w, http.StatusOK, Banner)
		})
		sc.log.Info("transport configured", "port", port, "body_limit", limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// BindPersistence opens one connection and attaches the models built over it.
// There is no retry.
func BindPersistence(ctx context.Context, sc *Context, conn Connector, build ModelBuilder) (*Context, error) {
	err := guard(sc.log, StagePersistence, func() error {
		if conn == nil || build == nil {
			return errors.New("no persistence collaborator configured")
		}
		db, err := conn.CreateConnection(ctx, sc)
		if err != nil {
			return err
		}
		models, err := build(ctx, db)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return fmt.Errorf("build models: %w", err)
		}
		if err := sc.setModels(models); err != nil {
			_ = models.Close()
			return err
		}
		sc.log.Info("models set up")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// BindObservability installs request ids, metrics and the per-request logger,
// and exposes /metrics.
func BindObservability(sc *Context) (*Context, error) {
	err := guard(sc.log, StageObservability, func() error {
		mw := router.Chain(reqid.Middleware(), metrics.Middleware(), middleware.RequestLogger(sc.log))
		if err := sc.use(PipeRequestLogger, mw); err != nil {
			return err
		}
		sc.router.Get("/metrics", "metrics", metrics.Handler())
		sc.log.Info("logger initialized")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// BindCORS installs policy for env both as middleware and as the OPTIONS
// handler for every path.
func BindCORS(sc *Context, policy OriginPolicy, env string) (*Context, error) {
	err := guard(sc.log, StageCORS, func() error {
		allow, err := policy.Matcher(env)
		if err != nil {
			return err
		}

		opts := middleware.DefaultCORSOptions()
		opts.AllowOrigin = allow
		opts.AllowedHeaders = policy.Headers
		opts.AllowCredentials = policy.Credentials
		opts.MaxAge = policy.MaxAge
		c := middleware.NewCORS(opts)

		if err := sc.use(PipeCORS, c.Middleware); err != nil {
			return err
		}
		sc.router.Options("/*", "preflight", c.Preflight)
		origins := policy.Origins(env)
		sc.setOrigins(origins)
		sc.log.Info("CORS allowing origins", "env", env, "origins", origins)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// BindRoutes hands the router to each registrar in turn.
func BindRoutes(sc *Context, registrars ...RouteRegistrar) (*Context, error) {
	err := guard(sc.log, StageRoutes, func() error {
		sc.mu.RLock()
		sealed := sc.frozen || sc.fault != nil
		sc.mu.RUnlock()
		if sealed {
			return ErrSealed
		}
		for _, register := range registrars {
			if register == nil {
				continue
			}
			if err := register(sc, sc.router); err != nil {
				var regErr *RegistrationError
				if errors.As(err, &regErr) {
					return err
				}
				return &RegistrationError{Err: err}
			}
		}
		if err := sc.markRoutes(); err != nil {
			return err
		}
		sc.log.Info("routes set", "count", len(sc.router.Routes()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// BindFaultBoundary installs h as the terminal error handler. It must be the
// last stage.
func BindFaultBoundary(sc *Context, h fault.Handler) (*Context, error) {
	err := guard(sc.log, StageErrorHandler, func() error {
		if h == nil {
			h = fault.JSONHandler{}
		}
		if err := sc.setBoundary(h); err != nil {
			return err
		}
		sc.log.Info("error handler set")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}
