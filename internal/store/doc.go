// Package store provides optional durable storage for ledger cells.
//
// It implements the append/lookup contract beneath the Chain abstraction:
// cells written here can be replayed into an in-memory chain at startup,
// re-verifying every content address and predecessor link. The core never
// depends on this package; it is one possible persistence backend.
//
// Uses SQLite with WAL mode for concurrent read access.
package store
