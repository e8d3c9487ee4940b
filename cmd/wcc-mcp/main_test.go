package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiasleandrokruk/wccmcp/internal/infra/config"
	"github.com/matiasleandrokruk/wccmcp/pkg/auth"
)

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	code, out, _ := execute(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "webcenter-content-mcp version")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	code, out, _ := execute(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--http")
}

func TestRun_InvalidFlag_Returns2(t *testing.T) {
	t.Parallel()

	code, _, errOut := execute(t, "--definitely-not-a-flag")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "unknown flag")
}

func TestRun_ToolsJSON(t *testing.T) {
	t.Parallel()

	code, out, _ := execute(t, "tools")
	require.Equal(t, exitOK, code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 56)
	assert.Equal(t, "search-documents", entries[0]["name"])
	assert.Equal(t, "unsubscribe-document", entries[55]["name"])
	schema := entries[0]["inputSchema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
}

func TestRun_ToolsYAML(t *testing.T) {
	t.Parallel()

	code, out, _ := execute(t, "tools", "--format", "yaml")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "- name: search-documents")
	assert.Contains(t, out, "inputSchema:")
}

func TestRun_ToolsUnknownFormat(t *testing.T) {
	t.Parallel()

	code, _, errOut := execute(t, "tools", "--format", "xml")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "unknown format")
}

func TestRun_MissingCredentials_Returns1(t *testing.T) {
	t.Setenv("WCC_BASE_URL", "")
	t.Setenv("WCC_USERNAME", "")
	t.Setenv("WCC_PASSWORD", "")

	code, out, errOut := execute(t)
	assert.Equal(t, exitError, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, config.ErrMissingCredentials.Error())
	assert.Contains(t, errOut, "WCC_BASE_URL")
	assert.Contains(t, errOut, "WCC_PASSWORD")
}

func TestRun_TokenRoundTrip(t *testing.T) {
	const secret = "token-command-secret-0123456789"
	t.Setenv("MCP_HTTP_JWT_SECRET", secret)

	code, out, errOut := execute(t, "token", "--subject", "indexer", "--ttl", "1h")
	require.Equal(t, exitOK, code, errOut)

	claims, err := auth.ParseToken(secret, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "indexer", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestRun_TokenRequiresSubject(t *testing.T) {
	t.Setenv("MCP_HTTP_JWT_SECRET", "token-command-secret-0123456789")

	code, _, errOut := execute(t, "token")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "--subject")
}

func TestRun_TokenRequiresSecret(t *testing.T) {
	t.Setenv("MCP_HTTP_JWT_SECRET", "")

	code, _, errOut := execute(t, "token", "--subject", "x")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "MCP_HTTP_JWT_SECRET")
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{LogLevel: "warn", LogFormat: "json"})
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"service":"webcenter-content-mcp"`)

	buf.Reset()
	logger = newLogger(&buf, config.Config{LogLevel: "bogus"})
	logger.Info().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}
