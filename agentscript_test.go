package agentscript

import (
	"bytes"
	"testing"

	"github.com/hupe1980/agentscript/config"
	"github.com/hupe1980/agentscript/core"
	"github.com/hupe1980/agentscript/logging"
	"github.com/hupe1980/agentscript/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	s := New(func(o *Options) {
		o.Output = out
		o.Logger = logging.NoOpLogger{}
	})
	t.Cleanup(s.Close)
	return s, out
}

func TestSession_EndToEnd(t *testing.T) {
	s, out := newTestSession(t)

	err := s.Run(`
import agentscript.stdlib.tools { WebSearch, Calculator, AgentRouting }

agent x = spawn Agent{ openai/gpt-4o }
agent y = spawn Agent{ anthropic/claude-3-5-sonnet }
agent coordinator = spawn Agent{ openai/gpt-4o-mini }

*coordinator->goal = "Distribute work."
*coordinator->tools = { Calculator }
*coordinator->tools += { AgentRouting{ x, y } }

answer = x.ask("status report", timeout=2)
print(answer)

result = coordinator.execute_tool("Calculator", "2 + 2 * 3")
print(f"calc: {result}")

routed = coordinator.execute_tool("AgentRouting", "fan out")
print(routed)
`)
	require.NoError(t, err)
	assert.Equal(t, "x: status report\ncalc: 8\nrouted to 2 agents\n", out.String())

	infos := s.Agents()
	require.Len(t, infos, 3)

	stats := s.BusStats()
	assert.Equal(t, uint64(3), stats.Sent) // one ask + two routed tells
	assert.GreaterOrEqual(t, len(stats.Flows), 3)

	toolStats := s.ToolStats()
	assert.Equal(t, uint64(1), toolStats["Calculator"].Calls)
	assert.Equal(t, uint64(1), toolStats["AgentRouting"].Calls)
	assert.Equal(t, uint64(0), toolStats["WebSearch"].Calls)

	history := s.History(10)
	assert.NotEmpty(t, history)
}

func TestSession_SyntaxErrorSurfacesPosition(t *testing.T) {
	s, _ := newTestSession(t)

	err := s.Run("agent a spawn Agent{ m }")
	require.Error(t, err)

	var se *parser.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Line)
}

func TestSession_RuntimeErrorSurfacesPosition(t *testing.T) {
	s, _ := newTestSession(t)

	err := s.Run("*ghost->goal = \"x\"")
	require.Error(t, err)
	assert.Equal(t, core.ErrUnknownAgent, core.CodeOf(err))

	var rerr *core.RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.True(t, rerr.Pos.IsValid())
}

func TestSession_StatePersistsAcrossRuns(t *testing.T) {
	s, out := newTestSession(t)

	require.NoError(t, s.Run(`agent a = spawn Agent{ m }`))
	require.NoError(t, s.Run(`print(f"still here: {a.status}")`))
	assert.Equal(t, "still here: idle\n", out.String())
}

func TestSession_ConfigAskTimeout(t *testing.T) {
	cfg := config.Defaults()
	// A zero default resolves asks to a timeout deterministically.
	cfg.Bus.AskTimeout = 0

	out := &bytes.Buffer{}
	s := New(func(o *Options) {
		o.Config = cfg
		o.Output = out
		o.Logger = logging.NoOpLogger{}
	})
	defer s.Close()

	require.NoError(t, s.Run(`agent a = spawn Agent{ m }`))
	err := s.Run(`a.ask("too slow")`)
	require.Error(t, err)
	assert.Equal(t, core.ErrTimeout, core.CodeOf(err))
}

func TestSession_IDsAreUnique(t *testing.T) {
	a, _ := newTestSession(t)
	b, _ := newTestSession(t)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEmpty(t, a.ID())
}
