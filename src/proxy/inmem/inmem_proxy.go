package inmem

import (
	"errors"
	"sync"

	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/node/state"
	"github.com/mosaicnetworks/tally/src/proxy"
	"github.com/sirupsen/logrus"
)

// ErrProxyClosed is returned by SubmitTx once the node has shut down.
var ErrProxyClosed = errors.New("proxy closed")

// InmemProxy connects a node and an application living in the same process.
// The application submits transactions with SubmitTx; the node drives the
// ProxyHandler through the AppProxy methods.
type InmemProxy struct {
	handler  proxy.ProxyHandler
	submitCh chan []byte

	closeOnce sync.Once
	closed    chan struct{}

	logger *logrus.Entry
}

// NewInmemProxy wraps handler. A nil logger is replaced by a debug logger.
func NewInmemProxy(handler proxy.ProxyHandler,
	logger *logrus.Entry) *InmemProxy {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &InmemProxy{
		handler:  handler,
		submitCh: make(chan []byte),
		closed:   make(chan struct{}),
		logger:   logger,
	}
}

// SubmitTx hands a copy of tx to the node. It blocks until the node takes
// it, and fails with ErrProxyClosed once the node has shut down.
func (p *InmemProxy) SubmitTx(tx []byte) error {
	t := make([]byte, len(tx))
	copy(t, tx)

	select {
	case p.submitCh <- t:
		return nil
	case <-p.closed:
		return ErrProxyClosed
	}
}

// Close makes every pending and future SubmitTx fail. It is called
// automatically when the node reports the Shutdown state.
func (p *InmemProxy) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
}

/*******************************************************************************
* AppProxy                                                                     *
*******************************************************************************/

// SubmitCh returns the channel the node reads transactions from.
func (p *InmemProxy) SubmitCh() chan []byte {
	return p.submitCh
}

// CommitBlock applies a block through the handler.
func (p *InmemProxy) CommitBlock(block chain.Block) (proxy.CommitResponse, error) {
	res, err := p.handler.CommitHandler(block)

	entry := p.logger.WithFields(logrus.Fields{
		"block": block.Index(),
		"txs":   len(block.Transactions()),
	})
	if err != nil {
		entry.WithError(err).Error("CommitBlock")
		return res, err
	}
	entry.WithField("state_hash", common.EncodeToString(res.StateHash)).Debug("CommitBlock")

	return res, nil
}

// GetSnapshot returns the application snapshot at blockIndex.
func (p *InmemProxy) GetSnapshot(blockIndex int) ([]byte, error) {
	snapshot, err := p.handler.SnapshotHandler(blockIndex)
	if err != nil {
		p.logger.WithError(err).WithField("block", blockIndex).Error("GetSnapshot")
	}
	return snapshot, err
}

// Restore resets the application to a snapshot.
func (p *InmemProxy) Restore(snapshot []byte) error {
	stateHash, err := p.handler.RestoreHandler(snapshot)
	if err != nil {
		p.logger.WithError(err).Error("Restore")
		return err
	}

	p.logger.WithField("state_hash", common.EncodeToString(stateHash)).Debug("Restore")
	return nil
}

// OnStateChanged forwards node state changes to the handler, and closes the
// proxy on Shutdown.
func (p *InmemProxy) OnStateChanged(s state.State) error {
	if s == state.Shutdown {
		p.Close()
	}
	return p.handler.StateChangeHandler(s)
}
