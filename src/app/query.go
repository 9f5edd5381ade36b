package app

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/mosaicnetworks/tally/src/tracker"
)

// Read accessors. Each one opens a throwaway working set under the read lock,
// so it never observes a half-applied block.

func (a *State) view(fn func(txn *ledger.Txn) error) error {
	a.RLock()
	defer a.RUnlock()

	return fn(ledger.NewTxn(a.runtime.Store()))
}

// GetReceipt returns the receipt of a transaction.
func (a *State) GetReceipt(txHash string) (*ledger.Receipt, error) {
	a.RLock()
	defer a.RUnlock()

	return a.runtime.GetReceipt(txHash)
}

// GetTracker returns the tracker singleton.
func (a *State) GetTracker() (res *tracker.Tracker, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = tracker.LoadTracker(txn)
		return err
	})
	return res, err
}

// GetPeriod returns a distribution period.
func (a *State) GetPeriod(number uint64) (res *tracker.Period, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = tracker.LoadPeriod(txn, number)
		return err
	})
	return res, err
}

// GetPeriods returns every period from 0 to the current one.
func (a *State) GetPeriods() (res []*tracker.Period, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = tracker.Periods(txn)
		return err
	})
	return res, err
}

// GetContributor returns the contributor record of principal, nil if the
// principal never contributed.
func (a *State) GetContributor(principal solana.PublicKey) (res *tracker.Contributor, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = tracker.LoadContributor(txn, principal)
		return err
	})
	return res, err
}

// GetContributions lists the contributions principal submitted in period.
func (a *State) GetContributions(principal solana.PublicKey, period uint64) (res []tracker.ContributionEntry, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = tracker.ContributionsInPeriod(txn, principal, period)
		return err
	})
	return res, err
}

// GetContribution returns the contribution at addr.
func (a *State) GetContribution(addr solana.PublicKey) (res *tracker.Contribution, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = tracker.LoadContribution(txn, addr)
		return err
	})
	return res, err
}

// GetClaimable previews the claim of principal against period.
func (a *State) GetClaimable(principal solana.PublicKey, period uint64) (res *tracker.Claim, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = tracker.Claimable(txn, principal, period)
		return err
	})
	return res, err
}

// GetTokenAccount returns the token account at addr.
func (a *State) GetTokenAccount(addr solana.PublicKey) (res *token.Account, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = token.LoadAccount(txn, addr)
		return err
	})
	return res, err
}

// GetMint returns the mint at addr.
func (a *State) GetMint(addr solana.PublicKey) (res *token.Mint, err error) {
	err = a.view(func(txn *ledger.Txn) error {
		res, err = token.LoadMint(txn, addr)
		return err
	})
	return res, err
}
