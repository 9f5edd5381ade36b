package node

import (
	"fmt"

	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/proxy"
	"github.com/sirupsen/logrus"
)

// Core is the non-concurrent part of a Node: the transaction pool and the
// chain of blocks. Callers serialize access to it.
type Core struct {
	// validator is a wrapper around the private-key controlling this node.
	validator *Validator

	// store persists the signed blocks.
	store *chain.Store

	// The transaction pool contains transactions submitted from the app that
	// still haven't made it into a block.
	transactionPool [][]byte

	// lastBlockIndex is the index of the last committed block, -1 if none.
	lastBlockIndex int

	// lastTimestamp is the timestamp of the last committed block. The next
	// block is never stamped earlier.
	lastTimestamp int64

	// committedTransactions counts the transactions of every block committed
	// since the Core was created.
	committedTransactions int

	// proxyCommitCallback is called when a block is committed
	proxyCommitCallback proxy.CommitCallback

	logger *logrus.Entry
}

// NewCore is a factory method that returns a new Core object. It resumes after
// the last block found in store.
func NewCore(
	validator *Validator,
	store *chain.Store,
	proxyCommitCallback proxy.CommitCallback,
	logger *logrus.Entry) (*Core, error) {

	core := &Core{
		validator:           validator,
		store:               store,
		transactionPool:     [][]byte{},
		lastBlockIndex:      -1,
		proxyCommitCallback: proxyCommitCallback,
		logger:              logger,
	}

	last, err := store.LastBlockIndex()
	if err != nil {
		return nil, err
	}

	if last >= 0 {
		block, err := store.GetBlock(last)
		if err != nil {
			return nil, err
		}
		core.lastBlockIndex = last
		core.lastTimestamp = block.Timestamp()

		if err := validator.VerifyBlock(block); err != nil {
			logger.WithError(err).Warn("Last block was not signed by this validator")
		}

		logger.WithFields(logrus.Fields{
			"last_block": last,
			"timestamp":  core.lastTimestamp,
			"state_hash": common.EncodeToString(block.StateHash()),
		}).Info("Resuming chain")
	}

	return core, nil
}

// Busy reports whether there are transactions waiting for a block.
func (c *Core) Busy() bool {
	return len(c.transactionPool) > 0
}

// AddTransactions appends transactions to the pool.
func (c *Core) AddTransactions(txs [][]byte) {
	c.transactionPool = append(c.transactionPool, txs...)
}

// Commit cuts a block of at most blockSize pooled transactions, stamped at
// now or at the previous block time if now is earlier, and commits it to the
// App. The block is signed and stored once the App has accepted it. On
// failure the transactions go back to the head of the pool.
func (c *Core) Commit(now int64, blockSize int) (*chain.Block, error) {
	if !c.Busy() {
		return nil, nil
	}

	n := len(c.transactionPool)
	if blockSize > 0 && n > blockSize {
		n = blockSize
	}
	txs := c.transactionPool[:n:n]
	rest := c.transactionPool[n:]

	timestamp := now
	if timestamp < c.lastTimestamp {
		timestamp = c.lastTimestamp
	}

	block := chain.NewBlock(c.lastBlockIndex+1, timestamp, txs)

	c.logger.WithFields(logrus.Fields{
		"block":     block.Index(),
		"timestamp": block.Timestamp(),
		"txs":       len(txs),
		"pool":      len(rest),
	}).Info("Commit")

	// Commit the Block to the App
	commitResponse, err := c.proxyCommitCallback(*block)
	if err != nil {
		c.logger.WithError(err).Error("Commit response")
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"block":      block.Index(),
		"receipts":   len(commitResponse.Receipts),
		"state_hash": common.EncodeToString(commitResponse.StateHash),
	}).Info("Commit response")

	if len(commitResponse.Receipts) != len(txs) {
		return nil, fmt.Errorf("block %d: %d receipts for %d transactions",
			block.Index(), len(commitResponse.Receipts), len(txs))
	}

	block.Body.StateHash = commitResponse.StateHash
	block.Body.Receipts = commitResponse.Receipts

	if _, err := c.SignBlock(block); err != nil {
		return nil, err
	}

	c.transactionPool = rest
	c.lastBlockIndex = block.Index()
	c.lastTimestamp = block.Timestamp()
	c.committedTransactions += len(txs)

	return block, nil
}

// SignBlock signs the block and stores it.
func (c *Core) SignBlock(block *chain.Block) (chain.BlockSignature, error) {
	sig, err := c.validator.SignBlock(block)
	if err != nil {
		return chain.BlockSignature{}, err
	}

	if err := c.store.SetBlock(block); err != nil {
		return sig, err
	}

	return sig, nil
}

// GetBlock returns a stored block.
func (c *Core) GetBlock(index int) (*chain.Block, error) {
	return c.store.GetBlock(index)
}

// GetLastBlockIndex returns the index of the last committed block.
func (c *Core) GetLastBlockIndex() int {
	return c.lastBlockIndex
}

// GetTransactionPoolCount returns the number of pooled transactions.
func (c *Core) GetTransactionPoolCount() int {
	return len(c.transactionPool)
}

// GetCommittedTransactionsCount returns the number of transactions committed
// since the Core was created.
func (c *Core) GetCommittedTransactionsCount() int {
	return c.committedTransactions
}
