// Package password provides the pure, synchronous password strength
// evaluator used to gate sign-up client-side before any remote call.
//
// # Scoring
//
// Five independent predicates (length ≥ 8, uppercase, lowercase, digit,
// symbol) each contribute one point. The score maps to a Strength band and
// an ordered suggestion list for every unmet predicate. Evaluate is
// deterministic, performs no I/O, and is cheap enough to run on every
// keystroke without debouncing.
//
// # What this package must NOT do
//
//   - Hash or store passwords (credential storage belongs to the remote
//     authentication service).
//   - Depend on any other authflow package.
package password
