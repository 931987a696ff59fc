// Package debounce provides the generation-counted debouncer used for remote
// field validation (email existence and availability checks).
//
// # Supersession semantics
//
// Every Schedule call advances a generation counter. A pending delay timer or
// an in-flight remote check whose generation no longer matches the latest one
// is discarded at the emit boundary: its result is never delivered, not merely
// raced against the newer one.
//
// # What this package must NOT do
//
//   - Know anything about email formats or specific remote services
//     (callers supply both predicates).
//   - Abort in-flight remote calls at the network layer; discard-on-arrival
//     is the contract.
//   - Be imported outside the authflow module.
package debounce
