package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSOptions configures the CORS middleware.
type CORSOptions struct {
	// AllowOrigin reports whether a request Origin may be echoed back.
	AllowOrigin      func(origin string) bool
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds for preflight cache
}

// DefaultCORSOptions returns the method list browsers expect for a JSON API.
// AllowOrigin is left nil, which rejects every cross-origin request.
func DefaultCORSOptions() CORSOptions {
	return CORSOptions{
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut,
			http.MethodPatch, http.MethodPost, http.MethodDelete,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}
}

// CORS applies one policy both as pipeline middleware and as the dedicated
// OPTIONS handler.
type CORS struct {
	c *cors.Cors
}

func NewCORS(opts CORSOptions) *CORS {
	allow := opts.AllowOrigin
	if allow == nil {
		allow = func(string) bool { return false }
	}
	return &CORS{c: cors.New(cors.Options{
		AllowOriginFunc:  allow,
		AllowedMethods:   opts.AllowedMethods,
		AllowedHeaders:   opts.AllowedHeaders,
		AllowCredentials: opts.AllowCredentials,
		MaxAge:           opts.MaxAge,
	})}
}

// Middleware answers preflights itself and decorates every other response.
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return c.c.Handler(next)
}

// Preflight answers OPTIONS requests that reach the router.
func (c *CORS) Preflight(w http.ResponseWriter, r *http.Request) {
	c.c.HandlerFunc(w, r)
	if r.Header.Get("Access-Control-Request-Method") == "" {
		w.WriteHeader(http.StatusNoContent)
	}
}
