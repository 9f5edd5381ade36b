package ledger

import (
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
)

const (
	accountPrefix = "acct"
	blockPrefix   = "block"
	receiptPrefix = "receipt"
)

// Store is the persistent key→record store. Write must apply a whole batch
// atomically: after a crash either every key of the batch is visible or none.
type Store interface {
	// Get returns the value stored under key or a common.StoreErr of type
	// KeyNotFound.
	Get(key []byte) ([]byte, error)
	// Write applies a batch atomically.
	Write(batch *Batch) error
	// Iterate calls fn on every key starting with prefix, in key order.
	Iterate(prefix []byte, fn func(key, value []byte) error) error
	// Close closes the underlying database.
	Close() error
	// StorePath returns the filepath of the underlying database, empty for
	// in-memory stores.
	StorePath() string
}

// AccountKey is the store key of the record at addr.
func AccountKey(addr solana.PublicKey) []byte {
	return []byte(fmt.Sprintf("%s_%s", accountPrefix, addr.String()))
}

// AccountPrefix is the prefix shared by all record keys.
func AccountPrefix() []byte {
	return []byte(accountPrefix + "_")
}

// BlockKey is the store key of a block.
func BlockKey(index int) []byte {
	return []byte(fmt.Sprintf("%s_%09d", blockPrefix, index))
}

// BlockPrefix is the prefix shared by all block keys.
func BlockPrefix() []byte {
	return []byte(blockPrefix + "_")
}

// ReceiptKey is the store key of a transaction receipt.
func ReceiptKey(txHash string) []byte {
	return []byte(fmt.Sprintf("%s_%s", receiptPrefix, txHash))
}

// Batch is an ordered set of writes.
type Batch struct {
	values map[string][]byte
}

// NewBatch creates an empty Batch.
func NewBatch() *Batch {
	return &Batch{values: make(map[string][]byte)}
}

// Put adds or replaces a write.
func (b *Batch) Put(key, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	b.values[string(key)] = v
}

// Len returns the number of writes.
func (b *Batch) Len() int {
	return len(b.values)
}

// Each calls fn on every write in key order.
func (b *Batch) Each(fn func(key, value []byte) error) error {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn([]byte(k), b.values[k]); err != nil {
			return err
		}
	}
	return nil
}
