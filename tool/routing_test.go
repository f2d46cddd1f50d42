package tool

import (
	"testing"

	"github.com/hupe1980/agentscript/bus"
	"github.com/hupe1980/agentscript/core"
	"github.com/hupe1980/agentscript/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentRouting_ForwardsToAllTargets(t *testing.T) {
	b := bus.New()
	defer b.Close()
	require.NoError(t, b.Register("x"))
	require.NoError(t, b.Register("y"))

	tc := NewContext("coordinator", b, logging.NoOpLogger{}).WithRoutes([]string{"x", "y"})
	routing := NewAgentRoutingTool()

	out, err := routing.Call(tc, []core.Value{core.String("new assignment")})
	require.NoError(t, err)
	assert.Equal(t, core.String("routed to 2 agents"), out)

	stats := b.Snapshot()
	assert.Equal(t, uint64(2), stats.Sent)
	assert.Equal(t, uint64(1), stats.Flows[bus.FlowKey("coordinator", "x")])
	assert.Equal(t, uint64(1), stats.Flows[bus.FlowKey("coordinator", "y")])

	for _, target := range []string{"x", "y"} {
		msg, ok := b.Receive(target)
		require.True(t, ok)
		assert.Equal(t, core.String("new assignment"), msg.Payload)
		assert.Equal(t, "coordinator", msg.Sender)
	}
}

func TestAgentRouting_NoTargetsBound(t *testing.T) {
	b := bus.New()
	defer b.Close()

	tc := NewContext("coordinator", b, logging.NoOpLogger{})
	_, err := NewAgentRoutingTool().Call(tc, []core.Value{core.String("payload")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target agents")
}

func TestAgentRouting_UnknownTargetFails(t *testing.T) {
	b := bus.New()
	defer b.Close()

	tc := NewContext("coordinator", b, logging.NoOpLogger{}).WithRoutes([]string{"ghost"})
	_, err := NewAgentRoutingTool().Call(tc, []core.Value{core.String("payload")})
	require.Error(t, err)
}
