// Package app assembles the HTTP service: an ordered list of bring-up stages
// that each extend a shared Context, driven by a Bootstrapper.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shashiranjanraj/sampleapp/pkg/fault"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
	"github.com/shashiranjanraj/sampleapp/pkg/router"
)

// Pipeline entry names, in the order bring-up appends them.
const (
	PipeBodyParser      = "body-parser"
	PipeSecurityHeaders = "security-headers"
	PipeRequestLogger   = "request-logger"
	PipeCORS            = "cors"
	PipeRoutes          = "routes"
	PipeFaultBoundary   = "fault-boundary"
)

// DataAccess is the handle persistence attaches to the Context.
type DataAccess interface {
	Ping(ctx context.Context) error
	Close() error
}

type entryKind int

const (
	kindMiddleware entryKind = iota
	kindRoutes
	kindBoundary
)

type entry struct {
	name string
	kind entryKind
	mw   router.Middleware
}

// Context is the service context threaded through every stage. Structural
// changes are rejected once Handler has been called.
type Context struct {
	mu      sync.RWMutex
	port    int
	log     *slog.Logger
	entries []entry
	router  *router.Router
	models  DataAccess
	origins []string
	routes  bool
	fault   fault.Handler
	frozen  bool
	handler http.Handler
}

func newContext(port int, log *slog.Logger) *Context {
	if log == nil {
		log = logger.Discard()
	}
	return &Context{port: port, log: log, router: router.New()}
}

// Port is the port recorded by the transport stage.
func (c *Context) Port() int { return c.port }

// Log is the process logger injected at bring-up.
func (c *Context) Log() *slog.Logger { return c.log }

// Router exposes the underlying transport primitive to route registrars.
func (c *Context) Router() *router.Router { return c.router }

// Pipeline returns the installed entry names in execution order.
func (c *Context) Pipeline() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Models returns the data-access layer, or nil before persistence is bound.
func (c *Context) Models() DataAccess {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.models
}

// Origins returns the origin set the CORS stage allowed, or nil before it ran.
func (c *Context) Origins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.origins...)
}

// Routes lists what the route stage registered. It is empty until then.
func (c *Context) Routes() []router.RouteInfo {
	c.mu.RLock()
	bound := c.routes
	c.mu.RUnlock()
	if !bound {
		return nil
	}
	return c.router.Routes()
}

func (c *Context) use(name string, mw router.Middleware) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	c.entries = append(c.entries, entry{name: name, kind: kindMiddleware, mw: mw})
	return nil
}

func (c *Context) setOrigins(origins []string) {
	c.mu.Lock()
	c.origins = origins
	c.mu.Unlock()
}

func (c *Context) setModels(m DataAccess) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	if c.models != nil {
		return errors.New("data-access layer already attached")
	}
	c.models = m
	return nil
}

func (c *Context) markRoutes() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	if c.routes {
		return errors.New("routes already bound")
	}
	c.routes = true
	c.entries = append(c.entries, entry{name: PipeRoutes, kind: kindRoutes})
	return nil
}

func (c *Context) setBoundary(h fault.Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	if !c.routes {
		return errors.New("fault boundary must follow route registration")
	}
	c.fault = h
	c.entries = append(c.entries, entry{name: PipeFaultBoundary, kind: kindBoundary})
	return nil
}

// mutable must be called with mu held.
func (c *Context) mutable() error {
	if c.frozen {
		return ErrFrozen
	}
	if c.fault != nil {
		return ErrSealed
	}
	return nil
}

// Handler freezes the Context and composes the request pipeline: the
// middlewares in the order they were appended, then route dispatch, all
// inside the fault boundary.
func (c *Context) Handler() http.Handler {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler != nil {
		return c.handler
	}
	c.frozen = true

	var h http.Handler = c.router.Handler()
	for i := len(c.entries) - 1; i >= 0; i-- {
		if e := c.entries[i]; e.kind == kindMiddleware {
			h = e.mw(h)
		}
	}
	if c.fault != nil {
		h = fault.Boundary(c.fault, c.log)(h)
	}
	c.handler = h
	return h
}
