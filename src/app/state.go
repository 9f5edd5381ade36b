package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/crypto"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/node/state"
	"github.com/mosaicnetworks/tally/src/proxy"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/mosaicnetworks/tally/src/tracker"
	"github.com/sirupsen/logrus"
)

// State is the tally application. It implements the ProxyHandler interface
// for use with an InmemProxy.
type State struct {
	sync.RWMutex

	runtime   *ledger.Runtime
	stateHash []byte
	lastBlock int
	nodeState state.State
	logger    *logrus.Entry
}

// NewState creates the application over store, with the token and tracker
// programs registered. stateHash and lastBlock resume a previous run; use
// nil and -1 for a fresh store.
func NewState(store ledger.Store, stateHash []byte, lastBlock int, logger *logrus.Entry) *State {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.InfoLevel
		logger = logrus.NewEntry(log)
	}
	if stateHash == nil {
		stateHash = []byte{}
	}

	runtime := ledger.NewRuntime(store,
		logger.WithField("component", "runtime"),
		token.NewProgram(),
		tracker.NewProgram(logger.WithField("component", "tracker")),
	)

	logger.WithFields(logrus.Fields{
		"last_block": lastBlock,
		"state_hash": common.EncodeToString(stateHash),
	}).Info("Init App State")

	return &State{
		runtime:   runtime,
		stateHash: stateHash,
		lastBlock: lastBlock,
		logger:    logger,
	}
}

// CommitHandler implements the ProxyHandler interface. It executes the block
// transactions in order, with the block timestamp as the clock, and chains
// the state hash over the resulting receipts. Program failures are part of
// the state; only store failures abort the commit.
func (a *State) CommitHandler(block chain.Block) (proxy.CommitResponse, error) {
	a.Lock()
	defer a.Unlock()

	start := time.Now()

	if block.Index() <= a.lastBlock {
		return proxy.CommitResponse{}, fmt.Errorf("block %d already committed, last is %d", block.Index(), a.lastBlock)
	}

	hash := a.stateHash
	receipts := make([]string, 0, len(block.Transactions()))

	for _, tx := range block.Transactions() {
		receipt, err := a.runtime.Execute(tx, block.Index(), block.Timestamp())
		if err != nil {
			a.logger.WithError(err).WithField("block", block.Index()).Error("Executing transaction")
			return proxy.CommitResponse{}, err
		}

		raw, err := receipt.Marshal()
		if err != nil {
			return proxy.CommitResponse{}, err
		}
		hash = crypto.SimpleHashFromTwoHashes(hash, crypto.SHA256(raw))
		receipts = append(receipts, receipt.TxHash)

		status := "ok"
		if !receipt.Succeeded() {
			status = "failed"
		}
		TransactionsTotal.WithLabelValues(programLabel(receipt.Program), status).Inc()

		a.logger.WithFields(logrus.Fields{
			"tx":      receipt.TxHash,
			"program": receipt.Program,
			"code":    receipt.Code,
		}).Debug(receipt.Message)
	}

	a.stateHash = hash
	a.lastBlock = block.Index()

	BlocksCommitted.Inc()
	BlockTransactions.Observe(float64(len(block.Transactions())))
	CommitDuration.Observe(time.Since(start).Seconds())
	LastBlockIndex.Set(float64(block.Index()))

	return proxy.CommitResponse{
		StateHash: hash,
		Receipts:  receipts,
	}, nil
}

// SnapshotHandler implements the ProxyHandler interface. Only the latest
// committed block can be snapshotted; older states are not retained.
func (a *State) SnapshotHandler(blockIndex int) ([]byte, error) {
	a.RLock()
	defer a.RUnlock()

	a.logger.WithField("block", blockIndex).Debug("GetSnapshot")

	if blockIndex != a.lastBlock {
		return nil, fmt.Errorf("Snapshot %d not found, last block is %d", blockIndex, a.lastBlock)
	}

	snapshot, err := takeSnapshot(a.runtime.Store(), a.lastBlock, a.stateHash)
	if err != nil {
		return nil, err
	}
	return snapshot.Marshal()
}

// RestoreHandler implements the ProxyHandler interface. It loads every record
// of the snapshot into the store and resumes from its block and state hash.
func (a *State) RestoreHandler(raw []byte) ([]byte, error) {
	a.Lock()
	defer a.Unlock()

	snapshot := new(Snapshot)
	if err := snapshot.Unmarshal(raw); err != nil {
		return nil, err
	}

	if err := snapshot.restore(a.runtime.Store()); err != nil {
		return nil, err
	}

	a.stateHash = snapshot.StateHash
	a.lastBlock = snapshot.BlockIndex

	a.logger.WithFields(logrus.Fields{
		"block":      a.lastBlock,
		"accounts":   len(snapshot.Accounts),
		"state_hash": common.EncodeToString(a.stateHash),
	}).Info("Restored snapshot")

	return a.stateHash, nil
}

// StateChangeHandler implements the ProxyHandler interface.
func (a *State) StateChangeHandler(s state.State) error {
	a.Lock()
	defer a.Unlock()

	a.nodeState = s
	a.logger.WithField("state", s).Debug("StateChangeHandler")
	return nil
}

// StateHash returns the state hash after the last committed block.
func (a *State) StateHash() []byte {
	a.RLock()
	defer a.RUnlock()

	return a.stateHash
}

// LastBlockIndex returns the index of the last committed block, -1 if none.
func (a *State) LastBlockIndex() int {
	a.RLock()
	defer a.RUnlock()

	return a.lastBlock
}

// NodeState returns the last state the node reported.
func (a *State) NodeState() state.State {
	a.RLock()
	defer a.RUnlock()

	return a.nodeState
}
