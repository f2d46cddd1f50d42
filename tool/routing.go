package tool

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentscript/core"
)

// agentRoutingTool forwards a payload to the agents bound in the invoking
// tool spec (`AgentRouting{ x, y }`) as asynchronous tells through the bus.
type agentRoutingTool struct{}

// NewAgentRoutingTool constructs the AgentRouting tool.
func NewAgentRoutingTool() Tool { return &agentRoutingTool{} }

func (t *agentRoutingTool) Name() string { return ToolAgentRouting }

func (t *agentRoutingTool) Description() string {
	return "Forward a payload to the bound target agents via the message bus."
}

func (t *agentRoutingTool) Call(tc *Context, args []core.Value) (core.Value, error) {
	payload, err := argString(args, 0, t.Name())
	if err != nil {
		return nil, err
	}
	if len(tc.Routes) == 0 {
		return nil, fmt.Errorf("AgentRouting: no target agents bound")
	}
	if tc.Bus == nil {
		return nil, fmt.Errorf("AgentRouting: no bus available")
	}
	for _, target := range tc.Routes {
		if _, err := tc.Bus.Tell(tc.AgentID, target, core.String(payload)); err != nil {
			return nil, fmt.Errorf("AgentRouting: route to %q failed: %w", target, err)
		}
	}
	tc.Logger.Info("payload routed", "sender", tc.AgentID, "targets", strings.Join(tc.Routes, ","))
	return core.String(fmt.Sprintf("routed to %d agents", len(tc.Routes))), nil
}
