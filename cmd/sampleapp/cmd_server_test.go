package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRoutes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listRoutes(&out, "test-secret"))

	text := out.String()
	assert.Contains(t, text, "METHOD")
	for _, want := range []string{"/api/login", "/api/products/{id}", "/metrics", "/*"} {
		assert.Contains(t, text, want)
	}
}

func TestServeAliases(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"start"})
	require.NoError(t, err)
	assert.Equal(t, serveCmd, cmd)
}
