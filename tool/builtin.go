package tool

import (
	"fmt"

	"github.com/hupe1980/agentscript/core"
)

// Built-in tool names.
const (
	ToolWebSearch    = "WebSearch"
	ToolFileManager  = "FileManager"
	ToolCalculator   = "Calculator"
	ToolAgentRouting = "AgentRouting"
)

// Builtins returns the standard tool set registered at runtime start.
func Builtins() []Tool {
	return []Tool{
		NewWebSearchTool(),
		NewFileManagerTool(),
		NewCalculatorTool(),
		NewAgentRoutingTool(),
	}
}

// webSearchTool is a capability stub standing in for a real search backend.
type webSearchTool struct{}

// NewWebSearchTool constructs the WebSearch stub.
func NewWebSearchTool() Tool { return &webSearchTool{} }

func (t *webSearchTool) Name() string { return ToolWebSearch }

func (t *webSearchTool) Description() string {
	return "Search the web for a query and return a result summary."
}

func (t *webSearchTool) Call(_ *Context, args []core.Value) (core.Value, error) {
	query, err := argString(args, 0, t.Name())
	if err != nil {
		return nil, err
	}
	return core.String(fmt.Sprintf("search results for: %s", query)), nil
}

// fileManagerTool is a capability stub standing in for file operations.
type fileManagerTool struct{}

// NewFileManagerTool constructs the FileManager stub.
func NewFileManagerTool() Tool { return &fileManagerTool{} }

func (t *fileManagerTool) Name() string { return ToolFileManager }

func (t *fileManagerTool) Description() string {
	return "Perform a named file operation."
}

func (t *fileManagerTool) Call(_ *Context, args []core.Value) (core.Value, error) {
	op, err := argString(args, 0, t.Name())
	if err != nil {
		return nil, err
	}
	return core.String(fmt.Sprintf("file operation: %s", op)), nil
}
