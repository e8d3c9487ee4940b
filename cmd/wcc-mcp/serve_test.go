package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiasleandrokruk/wccmcp/internal/infra/config"
)

// auditReadyLine returns the "audit db ready" entry of a JSON log.
func auditReadyLine(t *testing.T, logs *bytes.Buffer) map[string]any {
	t.Helper()
	sc := bufio.NewScanner(logs)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), sc.Text())
		if entry["message"] == "audit db ready" {
			return entry
		}
	}
	t.Fatalf("no audit db ready entry in %q", logs.String())
	return nil
}

func TestNewApp_LogsAuditMigrations(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		BaseURL:     "https://wcc.example.com",
		Username:    "weblogic",
		Password:    "secret",
		APIPath:     "/documents/wcc/api/v1.1",
		Timeout:     5 * time.Second,
		AuditDBPath: filepath.Join(t.TempDir(), "audit.db"),
	}

	open := func() map[string]any {
		var logs bytes.Buffer
		a, err := newApp(context.Background(), cfg, zerolog.New(&logs))
		require.NoError(t, err)
		a.close()
		return auditReadyLine(t, &logs)
	}

	first := open()
	assert.Equal(t, cfg.AuditDBPath, first["path"])
	assert.Equal(t, float64(2), first["schema_version"])
	assert.Equal(t, []any{float64(1), float64(2)}, first["migrations_applied"])

	second := open()
	assert.Equal(t, float64(2), second["schema_version"])
	assert.Equal(t, []any{}, second["migrations_applied"])
}
