package core

// AgentStatus is the lifecycle state of an agent as observed through the
// reserved `status` property.
type AgentStatus int

const (
	// StatusIdle means the agent's worker is waiting for mail.
	StatusIdle AgentStatus = iota
	// StatusActive means the agent is performing non-message work.
	StatusActive
	// StatusBusy means the agent's worker is processing a message.
	StatusBusy
	// StatusError means the agent's last operation failed. The worker stays
	// alive and the status clears on the next successful operation.
	StatusError
)

func (s AgentStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusActive:
		return "active"
	case StatusBusy:
		return "busy"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// AgentInfo carries the identity snapshot of an agent handed to responders
// and introspection callers. Model is the opaque "provider/name" descriptor
// from the spawn statement.
type AgentInfo struct {
	ID    string
	Name  string
	Model string
	Goal  string
}
