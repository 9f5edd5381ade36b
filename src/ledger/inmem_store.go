package ledger

import (
	"bytes"
	"sort"
	"sync"

	cm "github.com/mosaicnetworks/tally/src/common"
)

// InmemStore is a Store that keeps everything in a map. It is used by tests
// and by nodes started without --store.
type InmemStore struct {
	sync.RWMutex
	values map[string][]byte
}

// NewInmemStore creates an empty InmemStore.
func NewInmemStore() *InmemStore {
	return &InmemStore{
		values: make(map[string][]byte),
	}
}

// Get implements Store.
func (s *InmemStore) Get(key []byte) ([]byte, error) {
	s.RLock()
	defer s.RUnlock()

	v, ok := s.values[string(key)]
	if !ok {
		return nil, cm.NewStoreErr("InmemStore", cm.KeyNotFound, string(key))
	}

	res := make([]byte, len(v))
	copy(res, v)
	return res, nil
}

// Write implements Store. The lock makes the batch atomic for readers.
func (s *InmemStore) Write(batch *Batch) error {
	s.Lock()
	defer s.Unlock()

	return batch.Each(func(key, value []byte) error {
		s.values[string(key)] = value
		return nil
	})
}

// Iterate implements Store.
func (s *InmemStore) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	s.RLock()
	keys := []string{}
	for k := range s.values {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = s.values[k]
	}
	s.RUnlock()

	for i, k := range keys {
		if err := fn([]byte(k), values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Store.
func (s *InmemStore) Close() error {
	return nil
}

// StorePath implements Store.
func (s *InmemStore) StorePath() string {
	return ""
}
