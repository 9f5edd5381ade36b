// Package app is the tally application: it executes committed blocks against
// the ledger runtime, with the token and tracker programs registered, and
// exposes the resulting state to readers.
//
// State implements proxy.ProxyHandler. Every transaction of a block runs with
// the block timestamp as its clock. Failed transactions still produce a
// receipt, and the state hash is chained over the receipts so that two nodes
// that applied the same blocks agree on it.
package app
