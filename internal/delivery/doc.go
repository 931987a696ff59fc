// Package delivery tracks per-recipient email send timestamps and classifies
// delivery as normal or delayed via an elapsed-time heuristic.
//
// # Heuristic
//
// A send with no observed delivery confirmation becomes "delayed" once the
// configured threshold elapses. The monitor never retries sends; it only
// informs user-facing "taking longer than usual" messaging.
//
// # What this package must NOT do
//
//   - Talk to any mail or auth service.
//   - Keep a poller alive after its context is cancelled or the recipient's
//     record is evicted.
//   - Be imported outside the authflow module.
package delivery
