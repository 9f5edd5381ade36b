// Package node implements the sequencer of a tally node.
//
// A node receives raw transactions from the application through the AppProxy
// submit channel and keeps them in a pool. While the pool is not empty, a
// ControlTimer ticks every heartbeat. On every tick the node cuts a block of
// at most BlockSize transactions, stamps it with the time of its clock, and
// commits it to the application. Block timestamps never decrease, even if
// the wall clock does.
//
// The application answers with the state hash it reached. The node seals the
// state hash and the receipt hashes into the block, signs the block with the
// validator key, and persists it. Blocks are only ever produced by the local
// validator: there is no gossip and no peer-set.
//
// The node is a small state machine, with the states defined in the state
// package: Running, Suspended and Shutdown. A suspended node keeps accepting
// transactions but stops committing blocks until it is resumed.
package node
