package app

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/ugorji/go/codec"
)

// Snapshot is a dump of every record in the store at a given block.
type Snapshot struct {
	BlockIndex int
	StateHash  []byte
	// Accounts maps base58 addresses to record data.
	Accounts map[string][]byte
}

func takeSnapshot(store ledger.Store, blockIndex int, stateHash []byte) (*Snapshot, error) {
	snapshot := &Snapshot{
		BlockIndex: blockIndex,
		StateHash:  stateHash,
		Accounts:   make(map[string][]byte),
	}

	prefix := string(ledger.AccountPrefix())
	err := store.Iterate(ledger.AccountPrefix(), func(key, value []byte) error {
		v := make([]byte, len(value))
		copy(v, value)
		snapshot.Accounts[strings.TrimPrefix(string(key), prefix)] = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// restore writes the snapshot records into store in a single batch. The
// store must not hold records the snapshot does not know about.
func (s *Snapshot) restore(store ledger.Store) error {
	prefix := string(ledger.AccountPrefix())
	err := store.Iterate(ledger.AccountPrefix(), func(key, _ []byte) error {
		addr := strings.TrimPrefix(string(key), prefix)
		if _, ok := s.Accounts[addr]; !ok {
			return fmt.Errorf("store holds account %s which is not in the snapshot", addr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	batch := ledger.NewBatch()
	for addr, data := range s.Accounts {
		batch.Put([]byte(prefix+addr), data)
	}
	return store.Write(batch)
}

// Marshal returns the canonical JSON encoding of the snapshot. Accounts are
// sorted by address so equal states give equal bytes.
func (s *Snapshot) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal decodes the output of Marshal.
func (s *Snapshot) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	if err := dec.Decode(s); err != nil {
		return err
	}
	if s.Accounts == nil {
		s.Accounts = make(map[string][]byte)
	}
	return nil
}
