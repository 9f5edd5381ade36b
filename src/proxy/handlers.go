package proxy

import (
	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/node/state"
)

// ProxyHandler encapsulates callbacks to be called by the InmemProxy. This is
// the true contact surface between the node and the application. The
// application must implement these handlers to process incoming blocks and
// state changes.
type ProxyHandler interface {
	// CommitHandler is called when the node commits a block to the
	// application
	CommitHandler(block chain.Block) (response CommitResponse, err error)

	// SnapshotHandler is called to retrieve a snapshot corresponding to a
	// particular block
	SnapshotHandler(blockIndex int) (snapshot []byte, err error)

	// RestoreHandler is called to restore the application to a specific state
	RestoreHandler(snapshot []byte) (stateHash []byte, err error)

	// StateChangeHandler is called to notify that the node entered a certain
	// state
	StateChangeHandler(state.State) error
}
