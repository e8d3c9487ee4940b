// No t.Parallel(): env vars are process-global and not thread-safe.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envKeyBaseURL, envKeyUsername, envKeyPassword, envKeyAPIPath, envKeyTimeout,
		envKeyHTTPMode, envKeyHTTPHost, envKeyHTTPPort, envKeyHTTPPath, envKeyJWTSecret,
		envKeyAuditDB, envKeyLogLevel, envKeyLogFormat,
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "/documents/wcc/api/v1.1", cfg.APIPath)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.False(t, cfg.HTTPMode)
	assert.Equal(t, "127.0.0.1:3000", cfg.ListenAddr())
	assert.Equal(t, "/mcp", cfg.HTTPPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.ConsoleLogs())
	assert.Empty(t, cfg.AuditDBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyBaseURL, "https://wcc.example.com")
	t.Setenv(envKeyUsername, "weblogic")
	t.Setenv(envKeyPassword, "secret")
	t.Setenv(envKeyTimeout, "15")
	t.Setenv(envKeyHTTPMode, "true")
	t.Setenv(envKeyHTTPPort, "8088")
	t.Setenv(envKeyLogFormat, "console")

	cfg := Load()

	assert.Equal(t, "https://wcc.example.com", cfg.BaseURL)
	assert.Equal(t, "weblogic", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.True(t, cfg.HTTPMode)
	assert.Equal(t, 8088, cfg.HTTPPort)
	assert.True(t, cfg.ConsoleLogs())
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidTimeoutKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyTimeout, "soon")

	assert.Equal(t, defaultTimeout, Load().Timeout)
}

func TestValidate_ReportsEveryMissingCredential(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyUsername, "weblogic")

	err := Load().Validate()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredentials))
	assert.Contains(t, err.Error(), envKeyBaseURL)
	assert.Contains(t, err.Error(), envKeyPassword)
	assert.NotContains(t, err.Error(), envKeyUsername)
}

func TestLoadFile_EnvWinsOverFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wcc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://file.example.com
username: fileuser
password: filepass
timeout: 2m
http_mode: true
http_port: 9000
audit_db: /var/lib/wcc/audit.db
`), 0o600))
	t.Setenv(envKeyUsername, "envuser")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com", cfg.BaseURL)
	assert.Equal(t, "envuser", cfg.Username)
	assert.Equal(t, "filepass", cfg.Password)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.True(t, cfg.HTTPMode)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "/var/lib/wcc/audit.db", cfg.AuditDBPath)
}

func TestLoadFile_RejectsBadTimeout(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wcc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: forever\n"), 0o600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "invalid timeout")
}

func TestLoadFile_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvFile_DoesNotOverrideEnvironment(t *testing.T) {
	const key = "WCC_DOTENV_ONLY"
	t.Setenv(envKeyUsername, "already-set")
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"+envKeyUsername+"=from-file\n"), 0o600))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv(key))
	assert.Equal(t, "already-set", os.Getenv(envKeyUsername))
	assert.NoError(t, LoadEnvFile(""))
}

func TestLoadFile_EmptyPathMatchesLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyHTTPHost, "0.0.0.0")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Load(), cfg)
}

func TestListenAddr_BracketsIPv6(t *testing.T) {
	cfg := Defaults()
	cfg.HTTPHost = "::1"
	cfg.HTTPPort = 8080

	assert.Equal(t, "[::1]:8080", cfg.ListenAddr())
}
