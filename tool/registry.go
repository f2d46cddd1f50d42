package tool

import (
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/agentscript/core"
)

// Usage captures per-tool call accounting.
type Usage struct {
	Calls    uint64
	LastUsed time.Time
}

type entry struct {
	tool  Tool
	usage Usage
}

// Registry is the name-keyed, concurrency-safe table of invocable tools.
// Built-ins are registered once at runtime start; registrations are never
// removed during a session and each registration is atomic.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*entry{}}
}

// NewBuiltinRegistry creates a registry pre-loaded with the standard tool
// set (WebSearch, FileManager, Calculator, AgentRouting).
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, t := range Builtins() {
		// Names are unique by construction; Register cannot fail here.
		_ = r.Register(t)
	}
	return r
}

// Register adds a tool under its name. It fails with DuplicateTool when the
// name is taken; the registry is left unchanged in that case.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[t.Name()]; ok {
		return core.NewError(core.ErrDuplicateTool, "tool %q is already registered", t.Name())
	}
	r.entries[t.Name()] = &entry{tool: t}
	return nil
}

// Has reports whether a tool name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns the sorted registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute invokes a tool by name. Unknown names fail with UnknownTool.
// Usage counters are updated atomically with the call; handler failures are
// wrapped as ToolExecutionError carrying the cause.
func (r *Registry) Execute(tc *Context, name string, args ...core.Value) (core.Value, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return nil, core.NewError(core.ErrUnknownTool, "tool %q is not registered", name)
	}
	e.usage.Calls++
	e.usage.LastUsed = time.Now()
	r.mu.Unlock()

	start := time.Now()
	result, err := e.tool.Call(tc, args)
	if err != nil {
		tc.Logger.Error("tool execution failed", "tool", name, "error", err.Error())
		return nil, core.WrapError(core.ErrToolExecution, err, "tool %q failed: %v", name, err)
	}
	tc.Logger.Debug("tool executed", "tool", name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// UsageOf returns a tool's usage counters and whether the tool exists.
func (r *Registry) UsageOf(name string) (Usage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Usage{}, false
	}
	return e.usage, true
}

// Stats returns a snapshot of the usage counters for every registered tool.
func (r *Registry) Stats() map[string]Usage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Usage, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.usage
	}
	return out
}
