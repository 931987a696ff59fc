// Package cooldown implements the countdown timer that locks out rate-limited
// actions (resend verification, resend reset) for a fixed number of seconds.
//
// # Tick semantics
//
// One repeating tick decrements the remaining count; reaching zero deactivates
// the timer and stops the tick. Remaining time is clamped at zero and never
// goes negative. Starting a new countdown replaces the active one.
//
// # What this package must NOT do
//
//   - Issue or suppress the rate-limited action itself (owners consult
//     Active before calling out).
//   - Leave a ticking goroutine behind after Stop or completion.
//   - Be imported outside the authflow module.
package cooldown
