package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warn"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	// Unknown strings default to info.
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}

func TestScriptLogger_ContextualAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf}).
		WithComponent("bus").
		WithSession("sess-1").
		WithAgent("researcher")

	logger.Info("message routed", "kind", "tell")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "message routed", entry["msg"])
	assert.Equal(t, "bus", entry["component"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, "researcher", entry["agent"])
	assert.Equal(t, "tell", entry["kind"])
}

func TestScriptLogger_WithComponentDoesNotMutate(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})
	_ = base.WithComponent("interp")

	base.Info("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, has := entry["component"]
	assert.False(t, has)
}

func TestScriptLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "text", Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestScriptLogger_DomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "text", Output: &buf})

	logger.LogToolCall("Calculator", 3*time.Millisecond, true, nil)
	logger.LogToolCall("Calculator", time.Millisecond, false, errors.New("division by zero"))
	logger.LogAskRoundTrip("main", "helper", 2*time.Millisecond, nil)
	logger.LogSpawn("helper", "id-1", "openai/gpt-4o")

	out := buf.String()
	assert.Contains(t, out, "Tool execution completed")
	assert.Contains(t, out, "Tool execution failed")
	assert.Contains(t, out, "division by zero")
	assert.Contains(t, out, "Ask completed")
	assert.Contains(t, out, "Agent spawned")
}

func TestNoOpLoggerImplementsLogger(t *testing.T) {
	var _ Logger = NoOpLogger{}
	var _ Logger = (*ScriptLogger)(nil)
	var _ Logger = (*SlogAdapter)(nil)
}
