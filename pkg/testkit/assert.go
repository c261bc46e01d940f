package testkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code with testify.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got,
		"[%s] HTTP status code mismatch", scenario.Name)
}

// AssertHeaders checks every expected header. An empty expected value means
// the header must not be present.
func AssertHeaders(t *testing.T, scenario *Scenario, got http.Header) {
	t.Helper()
	for name, want := range scenario.ExpectedHeaders {
		if want == "" {
			assert.Empty(t, got.Values(name), "[%s] header %s should be absent", scenario.Name, name)
			continue
		}
		assert.Equal(t, want, got.Get(name), "[%s] header %s mismatch", scenario.Name, name)
	}
}

// AssertTextBody compares the raw body.
func AssertTextBody(t *testing.T, scenario *Scenario, expected, actual string) {
	t.Helper()
	assert.Equal(t, expected, actual, "[%s] response body mismatch", scenario.Name)
}

// AssertJSONSubset checks that every key and value in expected appears in
// actual. Extra keys in actual, like ids and timestamps, are ignored.
func AssertJSONSubset(t *testing.T, scenario *Scenario, expected, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", scenario.Name)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", scenario.Name, string(actual)) {
		return
	}

	if diffs := DiffJSON("", expVal, actVal); len(diffs) > 0 {
		t.Errorf("[%s] response body mismatch:\n%s\nbody: %s",
			scenario.Name, strings.Join(diffs, "\n"), string(actual))
	}
}

// DiffJSON lists where actual departs from expected. Only keys present in
// expected are compared.
func DiffJSON(path string, expected, actual interface{}) []string {
	var diffs []string
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffJSON(p, ev, av)...)
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if fmt.Sprintf("%v", expected) != fmt.Sprintf("%v", actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
