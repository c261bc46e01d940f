package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// Run executes the scenario at path against handler as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", path, err)
	}
	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, handler, s)
	})
}

// RunDir runs every *.json scenario in dir. Files named *_req.json or
// *_res.json are bodies, not scenarios.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	paths, err := scenarioFiles(dir)
	if err != nil || len(paths) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, s)
		})
	}
}

func scenarioFiles(dir string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range all {
		base := filepath.Base(p)
		if matched, _ := filepath.Match("*_re[qs].json", base); matched {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func runScenario(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	payload, err := s.body()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(s.RequestMethod, s.RequestURL, reqBody)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)
	AssertHeaders(t, s, rec.Header())
	if s.ExpectedBody != nil {
		AssertTextBody(t, s, *s.ExpectedBody, rec.Body.String())
	}
	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
			return
		}
		AssertJSONSubset(t, s, expected, rec.Body.Bytes())
	}
}
