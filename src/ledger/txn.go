package ledger

import (
	"github.com/gagliardetto/solana-go"
	cm "github.com/mosaicnetworks/tally/src/common"
)

// Txn is the working set of one transaction. Reads fall through to the Store
// unless the record was written earlier in the same transaction. Nothing
// reaches the Store until Commit.
type Txn struct {
	store Store
	dirty map[solana.PublicKey][]byte
}

// NewTxn opens a working set over store.
func NewTxn(store Store) *Txn {
	return &Txn{
		store: store,
		dirty: make(map[solana.PublicKey][]byte),
	}
}

// Get returns the record data at addr.
func (t *Txn) Get(addr solana.PublicKey) ([]byte, error) {
	if data, ok := t.dirty[addr]; ok {
		return data, nil
	}
	data, err := t.store.Get(AccountKey(addr))
	if err != nil {
		if cm.IsStore(err, cm.KeyNotFound) {
			return nil, cm.NewStoreErr("Account", cm.KeyNotFound, addr.String())
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether a record lives at addr.
func (t *Txn) Exists(addr solana.PublicKey) (bool, error) {
	_, err := t.Get(addr)
	if err == nil {
		return true, nil
	}
	if cm.IsStore(err, cm.KeyNotFound) {
		return false, nil
	}
	return false, err
}

// Put writes data at addr, creating or replacing the record.
func (t *Txn) Put(addr solana.PublicKey, data []byte) {
	v := make([]byte, len(data))
	copy(v, data)
	t.dirty[addr] = v
}

// Create writes data at addr, failing with KeyAlreadyExists when the address
// is taken.
func (t *Txn) Create(addr solana.PublicKey, data []byte) error {
	exists, err := t.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return cm.NewStoreErr("Account", cm.KeyAlreadyExists, addr.String())
	}
	t.Put(addr, data)
	return nil
}

// Dirty returns the number of records written so far.
func (t *Txn) Dirty() int {
	return len(t.dirty)
}

// Batch returns the writes of the transaction as a store Batch.
func (t *Txn) Batch() *Batch {
	batch := NewBatch()
	for addr, data := range t.dirty {
		batch.Put(AccountKey(addr), data)
	}
	return batch
}

// Commit writes every dirty record in one atomic batch.
func (t *Txn) Commit() error {
	if len(t.dirty) == 0 {
		return nil
	}
	if err := t.store.Write(t.Batch()); err != nil {
		return err
	}
	t.dirty = make(map[solana.PublicKey][]byte)
	return nil
}

// Discard drops every pending write.
func (t *Txn) Discard() {
	t.dirty = make(map[solana.PublicKey][]byte)
}
