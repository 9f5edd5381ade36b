package ledger

import (
	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/tally/src/common"
	"github.com/sirupsen/logrus"
)

// BadgerStore is a Store persisted in a BadgerDB.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens an existing database or creates a new one if nothing is
// found in path.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true)

	if logger != nil {
		opts = opts.WithLogger(logger.WithField("ns", "badger"))
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

// Get implements Store.
func (s *BadgerStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	return value, mapError(err, "BadgerStore", string(key))
}

// Write implements Store. The batch is applied in a single badger
// transaction.
func (s *BadgerStore) Write(batch *Batch) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	err := batch.Each(func(key, value []byte) error {
		return tx.Set(key, value)
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Iterate implements Store.
func (s *BadgerStore) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StorePath implements Store.
func (s *BadgerStore) StorePath() string {
	return s.path
}

func mapError(err error, name, key string) error {
	if err == badger.ErrKeyNotFound {
		return cm.NewStoreErr(name, cm.KeyNotFound, key)
	}
	return err
}
