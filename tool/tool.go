// Package tool implements the capability subsystem that lets agents invoke
// named, stateful tools with positional runtime-value arguments, consistent
// error handling and usage accounting. Concrete tools are capability stubs
// from the runtime's point of view; only the registry contract (thread-safe
// registration, lookup, execution, statistics) is load-bearing.
package tool

import (
	"fmt"

	"github.com/hupe1980/agentscript/bus"
	"github.com/hupe1980/agentscript/core"
	"github.com/hupe1980/agentscript/logging"
)

// Tool defines the interface for extending agent capabilities.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Validate their arguments and fail with meaningful errors
//   - Be safe for concurrent invocation from multiple agent workers
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Call executes the tool with positional runtime values and the caller's
	// Context. It returns a runtime value or an error; errors are wrapped as
	// ToolExecutionError by the registry.
	Call(tc *Context, args []core.Value) (core.Value, error)
}

// Context carries the execution environment handed to a tool call: the
// calling agent's id, the routing targets of the invoked binding (routing
// tools only), a bus handle for message side effects and a logger.
type Context struct {
	// AgentID identifies the calling agent ("" when invoked outside an agent).
	AgentID string
	// Routes holds the bound target agent ids for routing-style tool
	// bindings; empty otherwise.
	Routes []string
	// Bus gives tools access to the message router; may be nil in tests
	// that exercise pure tools.
	Bus *bus.Bus
	// Logger is never nil.
	Logger logging.Logger
}

// NewContext builds a Context with a guaranteed non-nil logger.
func NewContext(agentID string, b *bus.Bus, logger logging.Logger) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{AgentID: agentID, Bus: b, Logger: logger}
}

// WithRoutes returns a copy of the context carrying the binding's routing
// targets.
func (tc *Context) WithRoutes(routes []string) *Context {
	clone := *tc
	clone.Routes = routes
	return &clone
}

// argString extracts the positional argument at idx as a string.
func argString(args []core.Value, idx int, tool string) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("%s: missing argument %d", tool, idx+1)
	}
	s, ok := args[idx].(core.String)
	if !ok {
		return "", fmt.Errorf("%s: argument %d must be a string, got %s", tool, idx+1, args[idx].Kind())
	}
	return string(s), nil
}
