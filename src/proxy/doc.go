// Package proxy defines AppProxy: the interface between a tally node and the
// application that executes its blocks.
//
// The node sequences raw transactions into blocks and hands every block to
// the application through CommitBlock. The application answers with the state
// hash it reached and the receipts of the transactions, which the node then
// seals into the block before signing it.
//
// InmemProxy, in the inmem sub-package, binds a ProxyHandler running in the
// same process. It is the only proxy tally ships with.
package proxy
