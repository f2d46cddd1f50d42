// Package bus implements the central message router for inter-agent
// communication. It owns one mailbox per registered agent and provides the
// two send primitives of the language: synchronous ask (correlated
// request/response with a deadline) and asynchronous tell (fire-and-forget).
//
// Delivery guarantees:
//
//   - Per-pair ordering: messages from the same sender to the same recipient
//     are delivered in send order.
//   - At-least-once local delivery: undeliverable messages transition to
//     Failed and are reported to the caller, never dropped silently.
//   - At-most-one response per ask correlation token; late or duplicate
//     responses are discarded harmlessly and counted.
//   - Asks are served ahead of queued tells for the same recipient,
//     reflecting the synchronous caller's blocking wait.
//
// The bus also keeps delivery accounting (sent/delivered/failed/timed
// out/discarded, per-pair flows) and a bounded message history for
// introspection.
package bus
