package fault_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sampleapp/pkg/fault"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
)

type body struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) body {
	t.Helper()
	var b body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"http error", fault.NotFound("missing"), http.StatusNotFound},
		{"wrapped http error", errors.Join(errors.New("ctx"), fault.BadRequest("bad")), http.StatusBadRequest},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"panic", &fault.PanicError{Value: "x"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := fault.Classify(tc.err)
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestBoundaryReceivesPassedErrors(t *testing.T) {
	var got error
	h := fault.Boundary(fault.HandlerFunc(func(err error, w http.ResponseWriter, _ *http.Request) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}), logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fault.Pass(w, r, fault.New(http.StatusTeapot, "short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	var httpErr *fault.HTTPError
	require.ErrorAs(t, got, &httpErr)
	assert.Equal(t, "short and stout", httpErr.Message)
}

func TestBoundaryRecoversPanics(t *testing.T) {
	h := fault.Boundary(fault.JSONHandler{}, logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decode(t, rec).Message)
}

func TestPassWithoutBoundaryStillResponds(t *testing.T) {
	rec := httptest.NewRecorder()
	fault.Pass(rec, httptest.NewRequest(http.MethodGet, "/", nil), fault.Unauthorized("no token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no token", decode(t, rec).Message)
}

func TestValidationErrorsCarryFields(t *testing.T) {
	rec := httptest.NewRecorder()
	fault.JSONHandler{}.Handle(fault.Validation(map[string]string{"email": "required"}), rec,
		httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]string{"email": "required"}, decode(t, rec).Errors)
}

func TestBoundaryReportsPanicsOnInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	h := fault.Boundary(fault.JSONHandler{}, base)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "path=/boom")
}

func TestScopeMovesPanicReportsToRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	h := fault.Boundary(fault.JSONHandler{}, slog.New(slog.NewTextHandler(&base, nil)))(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			reqLog := slog.New(slog.NewTextHandler(&scoped, nil)).With("request_id", "abc")
			fault.Scope(r.Context(), reqLog)
			panic("kaboom")
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, base.String())
	assert.Contains(t, scoped.String(), "panic recovered")
	assert.Contains(t, scoped.String(), "request_id=abc")
}
