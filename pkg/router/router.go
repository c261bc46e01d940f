package router

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo describes one registered endpoint.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

type Router struct {
	mux    chi.Router
	routes map[string]string // name -> path
	names  map[string]string // "METHOD path" -> name
	mu     sync.RWMutex
}

type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

func New() *Router {
	return &Router{
		mux:    chi.NewRouter(),
		routes: make(map[string]string),
		names:  make(map[string]string),
	}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      r,
		prefix:      normalizePath(prefix),
		middlewares: append([]Middleware(nil), middlewares...),
	}
}

func (r *Router) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodGet, path, name, handler, middlewares...)
}

func (r *Router) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodPost, path, name, handler, middlewares...)
}

func (r *Router) Options(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.mount(http.MethodOptions, path, name, handler, middlewares...)
}

func (r *Router) path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path, ok := r.routes[name]
	return path, ok
}

// URL fills the {param} placeholders of the named route.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	path, ok := r.path(name)
	if !ok {
		return "", fmt.Errorf("route %q not found", name)
	}

	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}

	if strings.Contains(path, "{") {
		return "", fmt.Errorf("missing parameters for route %q", name)
	}

	return path, nil
}

// Routes lists every mounted endpoint sorted by path then method.
func (r *Router) Routes() []RouteInfo {
	var infos []RouteInfo
	_ = chi.Walk(r.mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		infos = append(infos, RouteInfo{Method: method, Path: route})
		return nil
	})

	r.mu.RLock()
	for i := range infos {
		infos[i].Name = r.names[infos[i].Method+" "+infos[i].Path]
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})
	return infos
}

func (r *Router) mount(method, path, name string, handler http.Handler, middlewares ...Middleware) {
	r.register(method, normalizePath(path), name, chain(handler, middlewares...))
}

func (r *Router) register(method, fullPath, name string, h http.Handler) {
	r.mux.Method(method, fullPath, recordPattern(fullPath, h))

	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = fullPath
	r.names[method+" "+fullPath] = name
}

func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	joined := joinPath(g.prefix, prefix)
	combined := append(append([]Middleware(nil), g.middlewares...), middlewares...)

	return &Group{
		router:      g.router,
		prefix:      joined,
		middlewares: combined,
	}
}

func (g *Group) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodGet, path, name, handler, middlewares...)
}

func (g *Group) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	g.mount(http.MethodPost, path, name, handler, middlewares...)
}

func (g *Group) mount(method, path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	combined := append(append([]Middleware(nil), g.middlewares...), middlewares...)
	g.router.register(method, joinPath(g.prefix, path), name, chain(handler, combined...))
}

type patternKey struct{}

type patternHolder struct{ pattern string }

// TrackPattern returns a context in which the router notes the pattern of
// the route that serves the request. The returned func reports it, or ""
// when nothing matched.
func TrackPattern(ctx context.Context) (context.Context, func() string) {
	h := &patternHolder{}
	return context.WithValue(ctx, patternKey{}, h), func() string { return h.pattern }
}

func recordPattern(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := r.Context().Value(patternKey{}).(*patternHolder); ok {
			h.pattern = pattern
		}
		next.ServeHTTP(w, r)
	})
}

// Chain composes middlewares so that middlewares[0] runs first.
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		return chain(next, middlewares...)
	}
}

func chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	if len(middlewares) == 0 {
		return handler
	}

	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func joinPath(parts ...string) string {
	if len(parts) == 0 {
		return "/"
	}

	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.Trim(part, "/")
		if trimmed != "" {
			segments = append(segments, trimmed)
		}
	}

	if len(segments) == 0 {
		return "/"
	}

	return "/" + strings.Join(segments, "/")
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	return joinPath(path)
}
