// Package goSession provides a Redis-backed session persistence engine: a
// [Store] that maps opaque session identifiers to mutable attribute sets,
// tracks per-session deltas to minimize writes, maintains a secondary index
// from principal name to session ids, and evicts expired sessions through a
// periodic [Sweeper].
//
// The package is designed for concurrent server workloads: Store methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. A [Session] instance, by contrast, belongs to exactly one
// request and must not be shared across goroutines.
//
// # Storage model
//
// Each session is one Redis hash: metadata fields (creation time, last
// accessed time, max inactive interval, indexed principal) plus one field per
// attribute. Attribute values are opaque encoded strings produced by a
// [codec.Codec]; the engine never interprets them beyond principal
// resolution. A companion set per principal name holds the ids of all
// sessions currently asserting that principal.
//
// Session rows carry no Redis TTL. Expiry is always computed from
// lastAccessedTime + maxInactiveInterval, so rewriting either field behaves
// correctly; deletion is owned by the expired-on-read path and the sweeper.
//
// # Flush modes
//
// Under [FlushModeOnSave] (the default) mutations accumulate in memory and
// persist on an explicit [Store.Save]. Under [FlushModeImmediate] every
// mutating Session operation synchronously saves before returning, trading
// write amplification for per-mutation durability.
//
// # Concurrency contract
//
// Two callers saving the same session id concurrently race at the
// application level: last write wins, no merge. The engine pushes all
// coordination to Redis and implements no locking of its own. A session
// renewed between the sweeper's scan and delete steps may still be swept;
// the next access then observes a miss and creates a fresh session.
//
// # Error taxonomy
//
// Absent rows are not errors: [Store.FindByID] returns a nil session and
// [Store.DeleteByID] is a no-op. Infrastructure failures wrap
// [ErrStoreUnavailable], corrupt rows wrap [ErrSessionCorrupt], and attribute
// encoding failures wrap [codec.ErrCodec]. Configuration problems fail at
// [Builder.Build], never per call.
//
// # What this package must NOT do
//
//   - Handle HTTP requests, cookies, or any transport concern; callers own
//     the request boundary and decide when to load, touch, and save.
//   - Interpret attribute payloads beyond the principal-resolution contract.
//   - Retry failed Redis operations; the first failure is surfaced.
package goSession
