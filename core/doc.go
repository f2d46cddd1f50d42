// Package core provides the foundational domain types shared across the
// AgentScript runtime. It defines the core abstractions for:
//
//   - Runtime values (the closed tagged union produced by expression evaluation)
//   - Agent identity, status and property storage
//   - Messages exchanged between agents (ask / tell) and their delivery states
//   - The runtime error taxonomy with source positions
//
// The package intentionally keeps implementation concerns (parsing, bus
// routing, worker scheduling, tool execution) out of scope so that every
// other package can depend on it without cycles.
package core
