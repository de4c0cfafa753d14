// Package state provides thread-safe collection stores for the skyward
// application.
//
// # Overview
//
// Each logical collection the UI shows (today's picture, the random gallery,
// image search results) lives in its own Store. The store is the only writer
// of that collection's state; fetch code reports outcomes to it and the UI
// reads snapshots from it.
//
// # Architecture
//
//	Producer (query.Facade):        Consumer (UI):
//	┌────────────────────┐         ┌─────────────────────┐
//	│ tok := Begin()     │         │                     │
//	│ fetch ...          │         │ ch, cancel :=       │
//	│ Succeed(tok, xs)   │────────→│   store.Subscribe() │
//	│   or Fail(tok, m)  │ (mutex) │ <-ch → render       │
//	└────────────────────┘         └─────────────────────┘
//
// # State Machine
//
//	idle ──Begin──→ loading ──Succeed(tok)──→ ready
//	                   │
//	                   └──────Fail(tok)─────→ failed
//	ready|failed ──Begin──→ loading
//	any ──Reset──→ idle
//
// Begin mints a new Token and records it as the active one. Succeed and Fail
// only apply when their token is still active; otherwise they return false
// and change nothing. Starting a second request therefore silently retires
// the first one, whatever order the network answers in. Reset clears the
// active token too, so a request that finishes after the user cleared the
// collection cannot bring results back.
//
// # Invariants
//
//   - Status == StatusFailed exactly when ErrorMessage != "".
//   - Items are replaced whole by a successful completion and never edited
//     in place. Begin and Fail leave the previous items visible.
//   - Snapshots returned to callers are copies; mutating them has no effect.
//
// # Subscriptions
//
// Subscribe hands out a one-slot channel that is primed with the current
// snapshot. After every applied mutation the store swaps whatever is pending
// for the newest snapshot, so publishing never blocks on a slow reader and a
// reader never acts on an out-of-date state. Dropped stale completions
// publish nothing.
//
// # Concurrency Model
//
// Fetches complete on their own goroutines. A sync.RWMutex serializes the
// mutations; the network I/O always happens before the store is touched, so
// the lock is held only for the copy.
package state
