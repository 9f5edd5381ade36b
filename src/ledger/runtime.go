package ledger

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	cm "github.com/mosaicnetworks/tally/src/common"
	"github.com/sirupsen/logrus"
)

// Program is an on-ledger program. Process must be deterministic: it may only
// read the Context (working set, signer, clock) and the instruction data.
type Program interface {
	ID() solana.PublicKey
	Name() string
	Process(ctx *Context, data []byte) error
}

// Context is handed to a program for the duration of one transaction.
type Context struct {
	Txn        *Txn
	Signer     solana.PublicKey
	BlockIndex int
	// Now is the block time in unix seconds. It is read once per block and
	// never comes from the caller.
	Now int64

	logs []string
}

// NewContext creates a Context outside of Runtime.Execute, for tools and
// tests that drive a program directly.
func NewContext(txn *Txn, signer solana.PublicKey, blockIndex int, now int64) *Context {
	return &Context{
		Txn:        txn,
		Signer:     signer,
		BlockIndex: blockIndex,
		Now:        now,
	}
}

// Logf appends a line to the transaction logs.
func (c *Context) Logf(format string, args ...interface{}) {
	c.logs = append(c.logs, fmt.Sprintf(format, args...))
}

// Logs returns the lines appended so far.
func (c *Context) Logs() []string {
	return c.logs
}

// Runtime executes transactions against a Store.
type Runtime struct {
	sync.RWMutex

	store    Store
	programs map[solana.PublicKey]Program
	logger   *logrus.Entry
}

// NewRuntime creates a Runtime with the given programs registered.
func NewRuntime(store Store, logger *logrus.Entry, programs ...Program) *Runtime {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.InfoLevel
		logger = logrus.NewEntry(log)
	}
	r := &Runtime{
		store:    store,
		programs: make(map[solana.PublicKey]Program),
		logger:   logger,
	}
	for _, p := range programs {
		r.Register(p)
	}
	return r
}

// Register adds a program.
func (r *Runtime) Register(p Program) {
	r.Lock()
	defer r.Unlock()

	r.programs[p.ID()] = p
}

func (r *Runtime) program(id solana.PublicKey) (Program, bool) {
	r.RLock()
	defer r.RUnlock()

	p, ok := r.programs[id]
	return p, ok
}

// Store returns the underlying store.
func (r *Runtime) Store() Store {
	return r.store
}

// Execute runs one raw transaction. Program failures are reported in the
// receipt and leave no trace other than the receipt itself; the returned
// error is only set when the store fails, which the caller must treat as
// fatal.
func (r *Runtime) Execute(raw []byte, blockIndex int, now int64) (*Receipt, error) {
	receipt := &Receipt{
		TxHash:     TxHash(raw),
		BlockIndex: blockIndex,
	}

	tx := new(Transaction)
	if err := tx.Unmarshal(raw); err != nil {
		r.fail(receipt, NewError(InvalidTransaction, "decoding transaction: %v", err))
		return receipt, r.persist(NewBatch(), receipt)
	}

	canonical, err := tx.Marshal()
	if err != nil {
		r.fail(receipt, NewError(InvalidTransaction, "encoding transaction: %v", err))
		return receipt, r.persist(NewBatch(), receipt)
	}
	receipt.TxHash = TxHash(canonical)
	receipt.Signer = tx.Signer.String()

	if _, err := r.store.Get(ReceiptKey(receipt.TxHash)); err == nil {
		// The first receipt stays authoritative; nothing is persisted.
		r.fail(receipt, NewError(DuplicateTransaction, "transaction %s already processed", receipt.TxHash))
		return receipt, nil
	} else if !cm.IsStore(err, cm.KeyNotFound) {
		return nil, err
	}

	if !tx.Verify() {
		r.fail(receipt, NewError(InvalidSignature, "invalid signature for signer %s", tx.Signer))
		return receipt, r.persist(NewBatch(), receipt)
	}

	program, ok := r.program(tx.ProgramID)
	if !ok {
		r.fail(receipt, NewError(UnknownProgram, "unknown program %s", tx.ProgramID))
		return receipt, r.persist(NewBatch(), receipt)
	}
	receipt.Program = program.Name()

	ctx := &Context{
		Txn:        NewTxn(r.store),
		Signer:     tx.Signer,
		BlockIndex: blockIndex,
		Now:        now,
	}

	err = program.Process(ctx, tx.Data)
	receipt.Logs = ctx.Logs()

	batch := NewBatch()
	if err != nil {
		ctx.Txn.Discard()
		r.fail(receipt, err)
	} else {
		batch = ctx.Txn.Batch()
		r.logger.WithFields(logrus.Fields{
			"tx":      receipt.TxHash,
			"program": receipt.Program,
			"writes":  batch.Len(),
		}).Debug("Transaction committed")
	}

	return receipt, r.persist(batch, receipt)
}

func (r *Runtime) fail(receipt *Receipt, err error) {
	receipt.Code = ErrorCode(err)
	receipt.Message = err.Error()
	receipt.Logs = append(receipt.Logs, fmt.Sprintf("failed: %s", err.Error()))

	r.logger.WithFields(logrus.Fields{
		"tx":      receipt.TxHash,
		"program": receipt.Program,
		"code":    receipt.Code,
	}).Debug(err.Error())
}

func (r *Runtime) persist(batch *Batch, receipt *Receipt) error {
	raw, err := receipt.Marshal()
	if err != nil {
		return err
	}
	batch.Put(ReceiptKey(receipt.TxHash), raw)
	return r.store.Write(batch)
}

// GetReceipt loads the receipt of a transaction.
func (r *Runtime) GetReceipt(txHash string) (*Receipt, error) {
	raw, err := r.store.Get(ReceiptKey(txHash))
	if err != nil {
		if cm.IsStore(err, cm.KeyNotFound) {
			return nil, cm.NewStoreErr("Receipt", cm.KeyNotFound, txHash)
		}
		return nil, err
	}
	receipt := new(Receipt)
	if err := receipt.Unmarshal(raw); err != nil {
		return nil, err
	}
	return receipt, nil
}
