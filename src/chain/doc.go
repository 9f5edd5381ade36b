// Package chain defines the blocks a tally node commits.
//
// A block carries an index, the block time every transaction inside it is
// executed with, the raw transactions in submission order, and the state hash
// the application returned after applying them. The validator that produced
// the block signs its body; signatures are kept in a map keyed by the
// validator's public key so that a block can later be countersigned.
package chain
