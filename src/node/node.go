package node

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/node/state"
	"github.com/mosaicnetworks/tally/src/proxy"
	"github.com/sirupsen/logrus"
)

// Node defines a tally node
type Node struct {
	state.Manager

	conf   *Config
	logger *logrus.Entry

	validator *Validator

	core     *Core
	coreLock sync.Mutex

	store *chain.Store

	proxy    proxy.AppProxy
	submitCh chan []byte

	sigintCh   chan os.Signal
	resumeCh   chan struct{}
	shutdownCh chan struct{}

	controlTimer *ControlTimer

	start time.Time
}

// NewNode is a factory method that returns a Node instance
func NewNode(conf *Config,
	validator *Validator,
	store *chain.Store,
	proxy proxy.AppProxy,
) (*Node, error) {
	logger := conf.Logger.WithField("this_id", validator.ID())

	core, err := NewCore(validator, store, proxy.CommitBlock, logger)
	if err != nil {
		return nil, err
	}

	//Prepare sigintCh to relay SIGINT system calls
	sigintCh := make(chan os.Signal, 1)
	signal.Notify(sigintCh, os.Interrupt, syscall.SIGINT)

	node := Node{
		validator:    validator,
		conf:         conf,
		logger:       logger,
		core:         core,
		store:        store,
		proxy:        proxy,
		submitCh:     proxy.SubmitCh(),
		sigintCh:     sigintCh,
		resumeCh:     make(chan struct{}, 1),
		shutdownCh:   make(chan struct{}),
		controlTimer: NewClockControlTimer(conf.Clock),
		start:        time.Now(),
	}

	return &node, nil
}

// RunAsync calls Run as a separate thread
func (n *Node) RunAsync() {
	n.logger.Debug("runasync")

	go n.Run()
}

// Run invokes the main loop of the node. It returns once the node is shut
// down.
func (n *Node) Run() {
	//The ControlTimer only runs while there are pooled transactions; it starts
	//unset.
	go n.controlTimer.Run(0)

	go n.doBackgroundWork()

	if n.conf.Suspended {
		n.setState(state.Suspended)
	} else {
		n.setState(state.Running)
	}

	//Execute Node State Machine
	for {
		s := n.GetState()

		n.logger.WithField("state", s.String()).Debug("Run loop")

		switch s {
		case state.Running:
			n.sequence()
		case state.Suspended:
			n.suspended()
		case state.Shutdown:
			return
		}
	}
}

func (n *Node) setState(s state.State) {
	n.SetState(s)

	if err := n.proxy.OnStateChanged(s); err != nil {
		n.logger.WithError(err).Error("OnStateChanged")
	}
}

// resetTimer schedules a tick if there is something to commit and no tick is
// scheduled yet.
func (n *Node) resetTimer() {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	if !n.controlTimer.Set() && n.core.Busy() {
		n.controlTimer.Reset(n.conf.HeartbeatTimeout)
	}
}

func (n *Node) doBackgroundWork() {
	for {
		select {
		case t := <-n.submitCh:
			n.logger.Debug("Adding Transaction")
			n.addTransaction(t)
			n.resetTimer()
		case <-n.shutdownCh:
			return
		case <-n.sigintCh:
			n.logger.Debug("Reacting to SIGINT - SHUTDOWN")
			n.Shutdown()
			return
		}
	}
}

// sequence commits a block on every tick while the node is Running.
func (n *Node) sequence() {
	n.logger.Debug("RUNNING")

	for {
		select {
		case <-n.controlTimer.tickCh:
			if n.GetState() != state.Running {
				return
			}
			n.GoFunc(n.commit)
		case <-n.resumeCh:
			if n.GetState() != state.Running {
				return
			}
		case <-n.shutdownCh:
			return
		}
	}
}

// suspended waits for Resume or Shutdown.
func (n *Node) suspended() {
	n.logger.Debug("SUSPENDED")

	select {
	case <-n.resumeCh:
	case <-n.shutdownCh:
	}
}

func (n *Node) commit() {
	n.coreLock.Lock()
	block, err := n.core.Commit(n.conf.Clock.Now().Unix(), n.conf.BlockSize)
	n.coreLock.Unlock()

	if err != nil {
		// The App and the chain may disagree from here on; stop producing
		// blocks until an operator looks at it.
		n.logger.WithError(err).Error("Commit failed, suspending")
		n.Suspend()
		return
	}

	if block != nil {
		n.logStats()
	}

	n.resetTimer()
}

func (n *Node) addTransaction(tx []byte) {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	n.core.AddTransactions([][]byte{tx})
}

// Suspend stops the production of blocks. Transactions are still pooled.
func (n *Node) Suspend() {
	if n.GetState() == state.Running {
		n.setState(state.Suspended)
		n.notifyResume()
	}
}

// Resume restarts the production of blocks after Suspend.
func (n *Node) Resume() {
	if n.GetState() == state.Suspended {
		n.setState(state.Running)
		n.notifyResume()
		n.resetTimer()
	}
}

func (n *Node) notifyResume() {
	select {
	case n.resumeCh <- struct{}{}:
	default:
	}
}

// Shutdown shuts down the node
func (n *Node) Shutdown() {
	if n.GetState() != state.Shutdown {
		n.logger.Debug("Shutdown")

		//Exit any non-shutdown state immediately
		n.setState(state.Shutdown)

		//Stop and wait for concurrent operations
		close(n.shutdownCh)

		n.WaitRoutines()

		n.controlTimer.Shutdown()

		//the store should only be closed once all concurrent operations are
		//finished
		n.coreLock.Lock()
		n.store.Close()
		n.coreLock.Unlock()
	}
}

// GetStats returns stats
func (n *Node) GetStats() map[string]string {
	n.coreLock.Lock()
	lastBlockIndex := n.core.GetLastBlockIndex()
	pool := n.core.GetTransactionPoolCount()
	committed := n.core.GetCommittedTransactionsCount()
	n.coreLock.Unlock()

	timeElapsed := time.Since(n.start)

	var transactionsPerSecond float64
	if timeElapsed > 0 {
		transactionsPerSecond = float64(committed) / timeElapsed.Seconds()
	}

	s := map[string]string{
		"last_block_index":        strconv.Itoa(lastBlockIndex),
		"committed_transactions":  strconv.Itoa(committed),
		"transaction_pool":        strconv.Itoa(pool),
		"transactions_per_second": strconv.FormatFloat(transactionsPerSecond, 'f', 2, 64),
		"block_size":              strconv.Itoa(n.conf.BlockSize),
		"heartbeat":               n.conf.HeartbeatTimeout.String(),
		"id":                      fmt.Sprint(n.validator.ID()),
		"validator":               n.validator.PublicKeyHex(),
		"state":                   n.GetState().String(),
		"moniker":                 n.validator.Moniker,
	}
	return s
}

func (n *Node) logStats() {
	stats := n.GetStats()

	n.logger.WithFields(logrus.Fields{
		"last_block_index":       stats["last_block_index"],
		"committed_transactions": stats["committed_transactions"],
		"transaction_pool":       stats["transaction_pool"],
		"txs/s":                  stats["transactions_per_second"],
		"id":                     stats["id"],
		"state":                  stats["state"],
		"moniker":                stats["moniker"],
	}).Debug("Stats")
}

// GetBlock returns a block
func (n *Node) GetBlock(blockIndex int) (*chain.Block, error) {
	return n.store.GetBlock(blockIndex)
}

// GetLastBlockIndex returns the index of the last committed block
func (n *Node) GetLastBlockIndex() int {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	return n.core.GetLastBlockIndex()
}

// ID returns the validator ID
func (n *Node) ID() uint32 {
	return n.validator.ID()
}

// Validator returns the node's validator
func (n *Node) Validator() *Validator {
	return n.validator
}
