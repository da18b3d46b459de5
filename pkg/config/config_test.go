package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TASKMON_INTERVAL", "TASKMON_LISTEN", "TASKMON_PROC_ROOT", "TASKMON_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
interval: 500ms
proc_root: /host/proc
log_level: debug
command_cache:
  enabled: true
  ttl: 2s
server:
  listen: 0.0.0.0:9090
  signal_rate: 0.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.Equal(t, "/host/proc", cfg.ProcRoot)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.True(t, cfg.CommandCache.Enabled)
	assert.Equal(t, 2*time.Second, cfg.CommandCache.TTL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Listen)
	assert.InDelta(t, 0.5, cfg.Server.SignalRate, 1e-9)
	assert.Equal(t, Default().Server.SignalBurst, cfg.Server.SignalBurst, "unset keys keep defaults")
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("unknown_key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "intervall: 1s\n"))
		require.Error(t, err)
	})
	t.Run("interval_too_small", func(t *testing.T) {
		_, err := Load(writeConfig(t, "interval: 10ms\n"))
		require.ErrorIs(t, err, ErrInvalid)
	})
	t.Run("bad_listen", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  listen: nope\n"))
		require.ErrorIs(t, err, ErrInvalid)
	})
	t.Run("bad_level", func(t *testing.T) {
		_, err := Load(writeConfig(t, "log_level: loud\n"))
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "interval: 3s\nproc_root: /file/proc\n")
	t.Setenv("TASKMON_INTERVAL", "2")
	t.Setenv("TASKMON_LISTEN", "localhost:7000")
	t.Setenv("TASKMON_PROC_ROOT", "/env/proc")
	t.Setenv("TASKMON_LOG_LEVEL", "WARN")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "localhost:7000", cfg.Server.Listen)
	assert.Equal(t, "/env/proc", cfg.ProcRoot)
	assert.Equal(t, slog.LevelWarn, cfg.Level())

	t.Setenv("TASKMON_INTERVAL", "soon")
	_, err = Load(path)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLevel_Fallback(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "bogus"
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
