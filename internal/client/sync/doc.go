// Package sync implements the reconciliation engine between the local
// reservoir and the remote store.
//
// A drain cycle replays the durable mutation log against the remote gateway
// in per-entity sequence order, then pulls remote deltas and merges them
// into the reservoir without clobbering not-yet-synced local edits. Drains
// are single-flight: a trigger received while one is running is dropped, and
// the running drain re-checks the log before exiting.
//
// Conflict rule: pending local intent always takes precedence over a
// concurrent remote read; once an entity's queue is empty, the updated_at
// comparison alone decides.
package sync
