package proxy

import (
	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/node/state"
)

// AppProxy is used by a node to talk to the application.
type AppProxy interface {
	SubmitCh() chan []byte
	CommitBlock(block chain.Block) (CommitResponse, error)
	GetSnapshot(blockIndex int) ([]byte, error)
	Restore(snapshot []byte) error
	OnStateChanged(state.State) error
}
