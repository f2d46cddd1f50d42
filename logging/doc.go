// Package logging provides a tiny abstraction over slog so runtime code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer ScriptLogger with contextual
// helpers (session, agent, component) and domain specific logging helpers
// for tool calls, message delivery and agent lifecycle events.
package logging
