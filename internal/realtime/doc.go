// Package realtime adapts a Redis pub/sub channel into the feed.Subscription
// contract consumed by the notification controller.
//
// # Lifecycle
//
// Subscribe confirms the subscription before returning; Close tears down the
// underlying pub/sub connection, which in turn closes the event channel and
// unblocks the consuming controller. Navigating away from the notifications
// view must Close (or cancel the controller's Run context) so no subscriber
// goroutine outlives the view.
//
// # What this package must NOT do
//
//   - Interpret or reorder events (the controller owns collection state).
//   - Be imported outside the authflow module.
package realtime
