// Package mutations implements the durable mutation log: an ordered queue of
// pending write operations awaiting replay against the remote store.
//
// Append is the durability boundary for a user's edit: once it returns, the
// record survives process termination. Records for the same entity are
// replayed strictly in sequence order; cross-entity order is unconstrained.
//
// The Nop implementation backs platforms where offline support is disabled:
// every operation is a cheap no-op and the pending count is always zero.
package mutations
