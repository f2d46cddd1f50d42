package runtime

import (
	"sync"

	"github.com/hupe1980/agentscript/core"
)

// Agent is a spawned script agent. Exactly one worker goroutine consumes
// its mailbox, so handler execution is serialized per agent. Property and
// status access is guarded for concurrent readers (introspection, other
// agents' handlers).
type Agent struct {
	mu     sync.RWMutex
	id     string
	name   string
	model  string
	status core.AgentStatus
	tools  core.ToolSet

	// props preserves declaration order for deterministic introspection.
	propKeys []string
	props    map[string]core.Value
}

func newAgent(name, model string) *Agent {
	return &Agent{
		id:     core.NewID(),
		name:   name,
		model:  model,
		status: core.StatusIdle,
		props:  map[string]core.Value{},
	}
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's declared name.
func (a *Agent) Name() string { return a.name }

// Model returns the model reference the agent was spawned with.
func (a *Agent) Model() string { return a.model }

// Status returns the agent's current lifecycle status.
func (a *Agent) Status() core.AgentStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *Agent) setStatus(s core.AgentStatus) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

// BeginWork marks the agent active while work runs on its behalf outside
// the mailbox loop, such as a script-driven tool execution.
func (a *Agent) BeginWork() {
	a.setStatus(core.StatusActive)
}

// EndWork records the outcome of that work: idle on success, error on
// failure. An error status clears on the agent's next successful operation.
func (a *Agent) EndWork(err error) {
	if err != nil {
		a.setStatus(core.StatusError)
		return
	}
	a.setStatus(core.StatusIdle)
}

// Tools returns the agent's bound tool set.
func (a *Agent) Tools() core.ToolSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tools
}

// SetTools replaces the agent's tool set.
func (a *Agent) SetTools(ts core.ToolSet) {
	a.mu.Lock()
	a.tools = ts
	a.mu.Unlock()
}

// AppendTools merges additional tools into the agent's set, deduplicating.
func (a *Agent) AppendTools(ts core.ToolSet) {
	a.mu.Lock()
	a.tools = a.tools.Merge(ts)
	a.mu.Unlock()
}

// HasTool reports whether a tool of the given name is bound to the agent.
func (a *Agent) HasTool(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tools.Contains(name)
}

// ToolRoutes returns the routing targets bound with the named tool.
func (a *Agent) ToolRoutes(name string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, spec := range a.tools {
		if spec.Name == name {
			return spec.Routes
		}
	}
	return nil
}

// SetProperty sets a named property, preserving first-set order.
func (a *Agent) SetProperty(name string, v core.Value) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.props[name]; !ok {
		a.propKeys = append(a.propKeys, name)
	}
	a.props[name] = v
}

// Property resolves a property read. The name, model and status properties
// reflect live agent state; any other property not previously set is Null.
func (a *Agent) Property(name string) core.Value {
	switch name {
	case "name":
		return core.String(a.name)
	case "model":
		return core.String(a.model)
	case "status":
		return core.String(a.Status().String())
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if v, ok := a.props[name]; ok {
		return v
	}
	return core.Null{}
}

// PropertyNames returns the set property names in first-set order.
func (a *Agent) PropertyNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.propKeys))
	copy(out, a.propKeys)
	return out
}

// Goal returns the agent's goal property, or "" when unset.
func (a *Agent) Goal() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if v, ok := a.props["goal"]; ok {
		if s, ok := v.(core.String); ok {
			return string(s)
		}
	}
	return ""
}

// Info returns a snapshot of the agent's identifying metadata.
func (a *Agent) Info() core.AgentInfo {
	return core.AgentInfo{
		ID:    a.id,
		Name:  a.name,
		Model: a.model,
		Goal:  a.Goal(),
	}
}

// Ref returns the agent's value representation for script variables.
func (a *Agent) Ref() core.AgentRef {
	return core.AgentRef{ID: a.id, Name: a.name}
}
