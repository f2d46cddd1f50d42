package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 30*time.Second, cfg.Bus.AskTimeout)
	assert.Equal(t, 1000, cfg.Bus.HistoryLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	require.NoError(t, Validate(cfg))
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Bus, cfg.Bus)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bus:
  ask_timeout: 5s
  history_limit: 50
logging:
  level: debug
  format: json
providers:
  openai:
    temperature: 0.2
    max_tokens: 1024
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Bus.AskTimeout)
	assert.Equal(t, 50, cfg.Bus.HistoryLimit)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	p, ok := cfg.Providers["openai"]
	require.True(t, ok)
	assert.Equal(t, 0.2, p.Temperature)
	assert.Equal(t, int64(1024), p.MaxTokens)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bus: ["), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AGENTSCRIPT_LOG_LEVEL", "error")
	t.Setenv("AGENTSCRIPT_ASK_TIMEOUT", "250ms")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Bus.AskTimeout)
	assert.Equal(t, "test-key", cfg.Providers["anthropic"].APIKey)
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := Defaults()
	cfg.Bus.AskTimeout = -time.Second
	require.Error(t, Validate(cfg))
}

func TestValidate_NegativeMailboxSize(t *testing.T) {
	cfg := Defaults()
	cfg.Bus.MailboxSize = -1
	require.Error(t, Validate(cfg))
}
