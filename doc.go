// Package authflow is the client-side account-lifecycle orchestration and
// real-time delivery core of a personal-finance application. It coordinates
// authentication attempts, debounced remote validation, resend cooldowns,
// email-delivery-delay heuristics, and a live notification feed against a
// remote authentication/notification backend, exposing one consistent state
// surface to views.
//
// The package is designed for concurrent UI workloads: Orchestrator and
// feed.Controller methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. Views read state snapshots; only
// the Orchestrator and Controller mutate.
//
// # Architecture boundaries
//
// authflow is the public surface. It exposes [Orchestrator], [Builder],
// [Config], value types (AuthState, ValidationResult, ErrorInfo, etc.), and
// the public leaf packages password and feed. All internal coordination —
// debounce generations, cooldown ticking, delivery polling, audit dispatch,
// Redis storage — lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Render anything or know about routing or styling.
//   - Implement the backend: the authentication service and notification
//     store are collaborators consumed through interfaces.
//   - Leave a timer, poller, or subscription running after Close.
package authflow
