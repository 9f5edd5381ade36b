package chain

import (
	"strconv"
	"strings"

	cm "github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/ledger"
)

// Store persists blocks in a ledger.Store, next to the accounts and receipts
// they produced.
type Store struct {
	db ledger.Store
}

// NewStore wraps a ledger.Store.
func NewStore(db ledger.Store) *Store {
	return &Store{db: db}
}

// SetBlock writes a block under its index, replacing any previous version.
func (s *Store) SetBlock(block *Block) error {
	raw, err := block.Marshal()
	if err != nil {
		return err
	}
	batch := ledger.NewBatch()
	batch.Put(ledger.BlockKey(block.Index()), raw)
	return s.db.Write(batch)
}

// GetBlock loads the block at index.
func (s *Store) GetBlock(index int) (*Block, error) {
	raw, err := s.db.Get(ledger.BlockKey(index))
	if err != nil {
		if cm.IsStore(err, cm.KeyNotFound) {
			return nil, cm.NewStoreErr("Block", cm.KeyNotFound, strconv.Itoa(index))
		}
		return nil, err
	}

	block := new(Block)
	if err := block.Unmarshal(raw); err != nil {
		return nil, cm.NewStoreErr("Block", cm.Corrupted, strconv.Itoa(index))
	}
	return block, nil
}

// LastBlockIndex returns the highest stored index, or -1 when there are no
// blocks.
func (s *Store) LastBlockIndex() (int, error) {
	last := -1
	prefix := string(ledger.BlockPrefix())

	err := s.db.Iterate(ledger.BlockPrefix(), func(key, _ []byte) error {
		index, err := strconv.Atoi(strings.TrimPrefix(string(key), prefix))
		if err != nil {
			return cm.NewStoreErr("Block", cm.Corrupted, string(key))
		}
		if index > last {
			last = index
		}
		return nil
	})

	return last, err
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}
