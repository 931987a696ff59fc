// Package audit implements async event dispatching for account lifecycle flows.
//
// # Components
//
// Event is the structured record for one flow attempt (sign-in, sign-up,
// resend, reset, OAuth redirect). Dispatcher forwards events from a buffered
// channel to a pluggable Sink on a single worker goroutine; Close drains the
// buffer before returning.
//
// # What this package must NOT do
//
//   - Mutate orchestrator state or interpret flow semantics.
//   - Block a flow on a slow sink when DropIfFull is enabled.
//   - Be imported outside the authflow module.
package audit
