package tracker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	cm "github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/ledger"
)

type record interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// get loads the record at addr into r. found is false when the address is
// empty or holds another kind of record.
func get(txn *ledger.Txn, addr solana.PublicKey, r record, name Record) (found bool, err error) {
	data, err := txn.Get(addr)
	if err != nil {
		if cm.IsStore(err, cm.KeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if kind, ok := RecordType(data); !ok || kind != name {
		return false, nil
	}
	if err := r.Unmarshal(data); err != nil {
		return false, cm.NewStoreErr(string(name), cm.Corrupted, fmt.Sprintf("%s: %v", addr, err))
	}
	return true, nil
}

func put(txn *ledger.Txn, addr solana.PublicKey, r record) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	txn.Put(addr, data)
	return nil
}

// LoadTracker reads the Tracker, failing with NotInitialized when it does not
// exist.
func LoadTracker(txn *ledger.Txn) (*Tracker, error) {
	addr, _ := TrackerAddress()
	t := new(Tracker)
	found, err := get(txn, addr, t, RecordTracker)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newError(NotInitialized, "tracker %s does not exist", addr)
	}
	return t, nil
}

// LoadPeriod reads Period number, failing with InvalidParameters when it does
// not exist.
func LoadPeriod(txn *ledger.Txn, number uint64) (*Period, error) {
	addr, _ := PeriodAddress(number)
	p := new(Period)
	found, err := get(txn, addr, p, RecordPeriod)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newError(InvalidParameters, "period %d does not exist", number)
	}
	return p, nil
}

// LoadContributor reads the Contributor of principal. It returns nil and no
// error when the principal never contributed.
func LoadContributor(txn *ledger.Txn, principal solana.PublicKey) (*Contributor, error) {
	addr, _ := ContributorAddress(principal)
	c := new(Contributor)
	found, err := get(txn, addr, c, RecordContributor)
	if err != nil || !found {
		return nil, err
	}
	return c, nil
}

// LoadContribution reads the Contribution at addr, failing with
// ContributionNotFound.
func LoadContribution(txn *ledger.Txn, addr solana.PublicKey) (*Contribution, error) {
	c := new(Contribution)
	found, err := get(txn, addr, c, RecordContribution)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newError(ContributionNotFound, "no contribution at %s", addr)
	}
	return c, nil
}

func saveTracker(txn *ledger.Txn, t *Tracker) error {
	addr, _ := TrackerAddress()
	return put(txn, addr, t)
}

func savePeriod(txn *ledger.Txn, p *Period) error {
	addr, _ := PeriodAddress(p.Number)
	return put(txn, addr, p)
}

func saveContributor(txn *ledger.Txn, c *Contributor) error {
	addr, _ := ContributorAddress(c.Principal)
	return put(txn, addr, c)
}

func saveContribution(txn *ledger.Txn, c *Contribution) error {
	addr, _ := ContributionAddress(c.Contributor, c.PeriodNumber, c.Sequence)
	return put(txn, addr, c)
}
