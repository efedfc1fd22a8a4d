// Package notes implements the local reservoir: a durable SQLite table of
// note records that is the single source of truth for reads while offline.
//
// The repository is deliberately unaware of synchronization. Every Put/Delete
// is expected to be paired by the caller with a mutation-log append inside
// the same transaction (see dbx.WithTx); that discipline lives in the note
// service's write path, not here.
package notes
