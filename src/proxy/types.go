package proxy

import "github.com/mosaicnetworks/tally/src/chain"

// CommitResponse is what the application returns for a committed block.
type CommitResponse struct {
	StateHash []byte
	// Receipts are the receipt hashes of the block transactions, in order.
	Receipts []string
}

// CommitCallback is the signature of AppProxy.CommitBlock.
type CommitCallback func(block chain.Block) (CommitResponse, error)
