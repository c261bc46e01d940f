package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sampleapp/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupMiddlewareRunsInOrder(t *testing.T) {
	var trail []string
	mark := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New()
	r.Group("/api", mark("group")).Get("/ping", "ping", ok, mark("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"group", "route"}, trail)
}

func TestRoutesListsNamedEndpoints(t *testing.T) {
	r := router.New()
	r.Get("/", "root", ok)
	r.Options("/*", "", ok)
	api := r.Group("/api")
	api.Post("/users", "users.store", ok)
	api.Get("/products/{id}", "products.show", ok)

	assert.Equal(t, []router.RouteInfo{
		{Method: http.MethodGet, Path: "/", Name: "root"},
		{Method: http.MethodOptions, Path: "/*"},
		{Method: http.MethodGet, Path: "/api/products/{id}", Name: "products.show"},
		{Method: http.MethodPost, Path: "/api/users", Name: "users.store"},
	}, r.Routes())
}

func TestURLBuildsNamedPath(t *testing.T) {
	r := router.New()
	r.Group("/api").Get("/products/{id}", "products.show", ok)

	url, err := r.URL("products.show", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/7", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err)
}

func TestChainOrder(t *testing.T) {
	var trail []string
	mw := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := router.Chain(mw("a"), mw("b"), mw("c"))(http.HandlerFunc(ok))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, trail)
}

func TestTrackPatternReportsMatchedRoute(t *testing.T) {
	r := router.New()
	r.Group("/api").Get("/products/{id}", "products.show", ok)

	for _, path := range []string{"/api/products/1", "/api/products/2"} {
		ctx, pattern := router.TrackPattern(context.Background())
		req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
		r.Handler().ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "/api/products/{id}", pattern())
	}

	ctx, pattern := router.TrackPattern(context.Background())
	r.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil).WithContext(ctx))
	assert.Empty(t, pattern())
}
