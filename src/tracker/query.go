package tracker

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
)

// ContributionEntry is a contribution together with its address.
type ContributionEntry struct {
	Address solana.PublicKey `json:"address"`
	*Contribution
}

// ContributionsInPeriod lists the contributions principal submitted during
// period, in submission order.
func ContributionsInPeriod(txn *ledger.Txn, principal solana.PublicKey, period uint64) ([]ContributionEntry, error) {
	contributor, err := LoadContributor(txn, principal)
	if err != nil || contributor == nil {
		return nil, err
	}

	var res []ContributionEntry
	for seq := uint64(0); seq < contributor.ContributionCount; seq++ {
		addr, _ := ContributionAddress(principal, period, seq)
		c := new(Contribution)
		found, err := get(txn, addr, c, RecordContribution)
		if err != nil {
			return nil, err
		}
		if found {
			res = append(res, ContributionEntry{Address: addr, Contribution: c})
		}
	}
	return res, nil
}

// Claimable previews a claim of principal against period. It fails with the
// error ClaimRewards would fail with, vault checks aside.
func Claimable(txn *ledger.Txn, principal solana.PublicKey, period uint64) (*Claim, error) {
	tracker, err := LoadTracker(txn)
	if err != nil {
		return nil, err
	}
	claim, _, _, err := assessClaim(txn, tracker, principal, period)
	return claim, err
}

// Periods loads periods 0 through the current one.
func Periods(txn *ledger.Txn) ([]*Period, error) {
	tracker, err := LoadTracker(txn)
	if err != nil {
		return nil, err
	}
	res := make([]*Period, 0, tracker.CurrentPeriod+1)
	for n := uint64(0); n <= tracker.CurrentPeriod; n++ {
		p, err := LoadPeriod(txn, n)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}
