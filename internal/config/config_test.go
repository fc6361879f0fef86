package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "9999", cfg.Server.TCPPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "config/default.yaml", cfg.Rules.File)
	assert.Zero(t, cfg.Rules.Seed)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:9000"
  shutdown_timeout: 2s
rules:
  file: cards.yaml
  seed: 42
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.HTTPAddr)
	assert.Equal(t, "9999", cfg.Server.TCPPort, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "cards.yaml", cfg.Rules.File)
	assert.Equal(t, int64(42), cfg.Rules.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "rules:\n  seed: 42\n")
	t.Setenv("KINGPIN_RULES_SEED", "7")
	t.Setenv("KINGPIN_SERVER_TCP_PORT", "7777")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Rules.Seed)
	assert.Equal(t, "7777", cfg.Server.TCPPort)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "logging:\n  format: xml\n"))
	assert.ErrorContains(t, err, "logging.format")

	_, err = Load(writeConfig(t, "server: [oops\n"))
	assert.Error(t, err)
}

func TestShippedServerConfig(t *testing.T) {
	cfg, err := Load("../../config/server.yaml")
	require.NoError(t, err)
	assert.Equal(t, "config/default.yaml", cfg.Rules.File)
}

func TestNewLogger(t *testing.T) {
	for _, lc := range []LoggingConfig{
		{Level: "debug", Format: "json"},
		{Level: "warn", Format: "console"},
		{Level: "bogus", Format: "console"},
	} {
		logger, err := NewLogger(lc)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}

	logger, err := NewLogger(LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
