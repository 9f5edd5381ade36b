package tracker

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/ledger"
)

// ProgramID is the address the tracker program is registered under.
var ProgramID = solana.MustPublicKeyFromBase58("87vicYP81ZyDmJU28bi2MkJyJMhU1wJWNmBjt41K9yvw")

// Seed tags.
const (
	TrackerSeed      = "contribution_tracker"
	PeriodSeed       = "distribution_period"
	ContributorSeed  = "contributor"
	ContributionSeed = "contribution"
)

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func find(seeds ...[]byte) (solana.PublicKey, uint8) {
	addr, bump, err := ledger.FindAddress(ProgramID, seeds...)
	if err != nil {
		// FindProgramAddress only fails when no bump yields an off-curve
		// point, which does not happen for these seed lengths.
		panic(err)
	}
	return addr, bump
}

// TrackerAddress returns the address of the singleton Tracker. The tracker
// address is also the authority of the reward vault.
func TrackerAddress() (solana.PublicKey, uint8) {
	return find([]byte(TrackerSeed))
}

// PeriodAddress returns the address of Period number.
func PeriodAddress(number uint64) (solana.PublicKey, uint8) {
	return find([]byte(PeriodSeed), u64le(number))
}

// ContributorAddress returns the address of the Contributor of principal.
func ContributorAddress(principal solana.PublicKey) (solana.PublicKey, uint8) {
	return find([]byte(ContributorSeed), principal[:])
}

// ContributionAddress returns the address of the sequence-th contribution of
// principal, submitted during period.
func ContributionAddress(principal solana.PublicKey, period, sequence uint64) (solana.PublicKey, uint8) {
	return find([]byte(ContributionSeed), principal[:], u64le(period), u64le(sequence))
}
