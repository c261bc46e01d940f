// Package testkit runs JSON-described HTTP scenarios against an http.Handler.
//
// Each scenario file describes one request and what the response must look
// like:
//
//	testdata/
//	  preflight_allowed.json   ← scenario
//	  create_user_req.json     ← request body (optional)
//	  create_user_res.json     ← expected JSON subset (optional)
//
// Example _test.go:
//
//	func TestScenarios(t *testing.T) {
//	    testkit.RunDir(t, sc.Handler(), "testdata")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario describes a single HTTP test case loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`   // defaults to GET
	RequestURL      string            `json:"requestUrl"`      // e.g. /api/users
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline JSON body
	RequestFileName string            `json:"requestFileName"` // body file, relative to the scenario
	Headers         map[string]string `json:"headers"`

	ExpectedCode int `json:"expectedCode"`
	// ExpectedHeaders maps header name to value. An empty value asserts the
	// header is absent.
	ExpectedHeaders  map[string]string `json:"expectedHeaders"`
	ExpectedBody     *string           `json:"expectedBody"`     // exact text body
	ResponseFileName string            `json:"responseFileName"` // JSON the body must contain

	dir string
}

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if len(s.RequestBody) > 0 && s.RequestFileName != "" {
		return fmt.Errorf("requestBody and requestFileName are mutually exclusive")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	return nil
}

// RequestBodyPath returns the request body file resolved against the
// scenario's directory, or "".
func (s *Scenario) RequestBodyPath() string {
	return s.resolve(s.RequestFileName)
}

// ResponseBodyPath returns the expected response file, or "".
func (s *Scenario) ResponseBodyPath() string {
	return s.resolve(s.ResponseFileName)
}

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// body returns the request payload, or nil when the scenario has none.
func (s *Scenario) body() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	if p := s.RequestBodyPath(); p != "" {
		return os.ReadFile(p)
	}
	return nil, nil
}
