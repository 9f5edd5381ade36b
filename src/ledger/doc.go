// Package ledger is the runtime that tally programs execute against.
//
// It provides a key→record Store (in-memory or badger), a Txn working set that
// buffers the writes of one transaction and commits them in a single atomic
// batch, signed Transactions, and a Runtime that verifies signatures,
// dispatches instruction data to the registered Program, and persists a
// Receipt for every transaction it sees.
//
// Records are addressed by 32-byte addresses. Program-owned records use
// program-derived addresses computed by FindAddress from fixed string tags and
// stable key material, so related records never hold pointers to each other.
package ledger
