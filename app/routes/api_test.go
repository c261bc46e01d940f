package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sampleapp/app/repositories"
	"github.com/shashiranjanraj/sampleapp/app/routes"
	"github.com/shashiranjanraj/sampleapp/pkg/app"
	"github.com/shashiranjanraj/sampleapp/pkg/auth"
	"github.com/shashiranjanraj/sampleapp/pkg/cache"
	"github.com/shashiranjanraj/sampleapp/pkg/database"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
	"github.com/shashiranjanraj/sampleapp/pkg/testkit"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type client struct {
	t *testing.T
	h http.Handler
}

func (c client) do(method, path, body, token string) (int, envelope) {
	c.t.Helper()
	rec := c.send(method, path, body, token)
	var env envelope
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (c client) send(method, path, body, token string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func newClient(t *testing.T) client {
	t.Helper()
	signer := auth.NewSigner("test-secret", time.Hour)
	b := app.New(app.Config{Port: 8080}, logger.Discard()).
		Persistence(database.Connector{Driver: "sqlite", DSN: ":memory:"}, repositories.Builder(cache.Options{})).
		Routes(routes.API(signer))

	sc, err := b.Bring(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Models().Close() })
	return client{t: t, h: sc.Handler()}
}

func TestScenarios(t *testing.T) {
	testkit.RunDir(t, newClient(t).h, "testdata")
}

func TestRegisterLoginProfile(t *testing.T) {
	c := newClient(t)

	code, env := c.do(http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com","password":"correct horse"}`, "")
	require.Equal(t, http.StatusCreated, code)
	assert.NotContains(t, string(env.Data), "correct horse")

	code, env = c.do(http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com","password":"correct horse"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Errors["email"], "taken")

	code, _ = c.do(http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"wrong password"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = c.do(http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, code)
	var login struct{ Token string }
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	code, _ = c.do(http.MethodGet, "/api/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = c.do(http.MethodGet, "/api/profile", "", login.Token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "ada@example.com")
}

func TestRegisterValidation(t *testing.T) {
	c := newClient(t)

	code, env := c.do(http.MethodPost, "/api/users", `{"name":"A","email":"nope","password":"short"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Len(t, env.Errors, 3)

	code, _ = c.do(http.MethodPost, "/api/users", `{"name":`, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProducts(t *testing.T) {
	c := newClient(t)
	token, err := auth.NewSigner("test-secret", time.Hour).GenerateToken(1, "admin")
	require.NoError(t, err)

	body := `{"name":"Widget","price":9.5,"stock":3,"sku":"W-1"}`
	code, _ := c.do(http.MethodPost, "/api/products", body, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	created := c.send(http.MethodPost, "/api/products", body, token)
	require.Equal(t, http.StatusCreated, created.Code)
	assert.Equal(t, "/api/products/1", created.Header().Get("Location"))

	code, env := c.do(http.MethodGet, "/api/products/1", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Widget")

	code, _ = c.do(http.MethodGet, "/api/products/42", "", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = c.do(http.MethodGet, "/api/products/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = c.do(http.MethodGet, "/api/products", "", "")
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestBadTrustedProxyFailsRegistration(t *testing.T) {
	sc, err := app.InitializeTransport(8080, app.TransportConfig{}, logger.Discard())
	require.NoError(t, err)

	_, err = app.BindRoutes(sc, routes.API(auth.NewSigner("x", time.Hour), "not-a-network"))

	var regErr *app.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, app.StageRoutes, app.StageOf(err))
}

func TestRoutesWithoutDataAccess(t *testing.T) {
	sc, err := app.InitializeTransport(8080, app.TransportConfig{}, logger.Discard())
	require.NoError(t, err)
	_, err = app.BindRoutes(sc, routes.API(auth.NewSigner("x", time.Hour)))
	require.NoError(t, err)

	names := map[string]bool{}
	for _, info := range sc.Routes() {
		names[info.Name] = true
	}
	for _, want := range []string{"home", "users.store", "auth.login", "auth.profile", "products.index", "products.show", "products.store"} {
		assert.True(t, names[want], want)
	}
}
