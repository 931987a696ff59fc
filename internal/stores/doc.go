// Package stores contains the Redis-backed notification store.
//
// # Key layout
//
// Fixed prefixes under a configurable namespace (default "nf"):
//   - nfx:<user>       — ZSET recency index, member = id, score = created_at (ms)
//   - nfi:<user>:<id>  — HASH item body
//   - nfe:<user>       — pub/sub channel carrying JSON change envelopes
//
// Every mutation publishes a change envelope so subscribed clients converge
// without polling.
//
// # What this package must NOT do
//
//   - Hold in-memory collection state (that is feed.Controller's job).
//   - Be imported outside the authflow module.
package stores
