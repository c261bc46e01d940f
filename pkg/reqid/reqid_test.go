package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/sampleapp/pkg/reqid"
)

func serve(req *http.Request) (string, *httptest.ResponseRecorder) {
	var seen string
	h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestGeneratesID(t *testing.T) {
	seen, rec := serve(httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected a UUID, got %q", seen)
	}
	if got := rec.Header().Get(reqid.Header); got != seen {
		t.Errorf("response header %q != context id %q", got, seen)
	}
}

func TestHonoursUpstreamID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(reqid.Header, "gateway-42")

	seen, _ := serve(req)
	if seen != "gateway-42" {
		t.Errorf("expected upstream id, got %q", seen)
	}
}
